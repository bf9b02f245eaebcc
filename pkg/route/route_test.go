package route

import (
	"errors"
	"math"
	"testing"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
)

func mustRouter(t *testing.T, grid float64) *Router {
	t.Helper()
	r, err := NewRouter(grid, geom.DefaultTolerance, nil)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return r
}

func samePath(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Near(b[i], 1e-9) {
			return false
		}
	}
	return true
}

func TestRouteStrategies(t *testing.T) {
	r := mustRouter(t, 1)
	start, end := geom.Pt(0, 0), geom.Pt(30, 40)

	tests := []struct {
		strategy Strategy
		want     Path
	}{
		{HFirst, Path{start, geom.Pt(30, 0), end}},
		{VFirst, Path{start, geom.Pt(0, 40), end}},
		{Auto, Path{start, geom.Pt(0, 40), end}},
		{Direct, Path{start, end}},
	}

	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			got, err := r.Route(start, end, tt.strategy)
			if err != nil {
				t.Fatalf("Route: %v", err)
			}
			if !samePath(got, tt.want) {
				t.Errorf("Route = %v, want %v", got, tt.want)
			}
			if tt.strategy != Direct && got.Length() != 70 {
				t.Errorf("Length = %g, want 70", got.Length())
			}
		})
	}
}

func TestAutoSelection(t *testing.T) {
	tests := []struct {
		end  geom.Point
		want Strategy
	}{
		{geom.Pt(100, 40), HFirst},
		{geom.Pt(40, 100), VFirst},
		{geom.Pt(50, 50), VFirst}, // ties go vertical
		{geom.Pt(-100, 40), HFirst},
	}
	for _, tt := range tests {
		if got := Choose(geom.Pt(0, 0), tt.end, Auto); got != tt.want {
			t.Errorf("Choose(%v) = %v, want %v", tt.end, got, tt.want)
		}
	}

	path, err := mustRouter(t, 2.54).Route(geom.Pt(0, 0), geom.Pt(101.6, 40.64), Auto)
	if err != nil {
		t.Fatal(err)
	}
	if !path[1].Near(geom.Pt(101.6, 0), 1e-9) {
		t.Errorf("expected horizontal-first corner, got %v", path)
	}
}

func TestRouteSamePoint(t *testing.T) {
	p := geom.Pt(12.7, 25.4)
	got, err := mustRouter(t, 1.27).Route(p, p, Auto)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != p || got[1] != p {
		t.Errorf("expected [p, p], got %v", got)
	}
	if got.Length() != 0 {
		t.Errorf("expected zero length, got %g", got.Length())
	}
	if err := got.Validate(geom.DefaultTolerance); err != nil {
		t.Errorf("degenerate path should validate: %v", err)
	}
}

func TestRouteAlignedPointsDropCorner(t *testing.T) {
	r := mustRouter(t, 1.27)
	for _, s := range []Strategy{Auto, HFirst, VFirst} {
		got, err := r.Route(geom.Pt(0, 10), geom.Pt(25.4, 10), s)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Errorf("%v: horizontal run should not get a corner: %v", s, got)
		}
	}
}

func TestRouteCornerSnapping(t *testing.T) {
	r := mustRouter(t, 1.27)

	// the raw corner (25.4, 2.54) is already on grid; snapping is a no-op
	got, err := r.Route(geom.Pt(0, 2.54), geom.Pt(25.4, 12.7), HFirst)
	if err != nil {
		t.Fatal(err)
	}
	if !got[1].Near(geom.Pt(25.4, 2.54), 1e-9) {
		t.Errorf("unexpected corner %v", got[1])
	}

	// an off-grid start keeps the path orthogonal instead of snapping the
	// corner off the first leg
	got, err = r.Route(geom.Pt(0.3, 0.3), geom.Pt(25.4, 12.7), HFirst)
	if err != nil {
		t.Fatal(err)
	}
	if err := got.Validate(geom.DefaultTolerance); err != nil {
		t.Errorf("path not orthogonal: %v (%v)", got, err)
	}
}

func TestRouteOrthogonalityProperty(t *testing.T) {
	r := mustRouter(t, 1.27)
	points := []geom.Point{
		geom.Pt(0, 0), geom.Pt(2.54, 7.62), geom.Pt(-12.7, 3.81), geom.Pt(50.8, -25.4), geom.Pt(2.54, 0),
	}
	for _, a := range points {
		for _, b := range points {
			for _, s := range []Strategy{Auto, HFirst, VFirst} {
				p, err := r.Route(a, b, s)
				if err != nil {
					t.Fatal(err)
				}
				if err := p.Validate(geom.DefaultTolerance); err != nil {
					t.Errorf("%v -> %v (%v): %v", a, b, s, err)
				}
				if math.Abs(p.Length()-a.Manhattan(b)) > 1e-9 {
					t.Errorf("%v -> %v (%v): length %g != manhattan %g", a, b, s, p.Length(), a.Manhattan(b))
				}
				if p.Start() != a || p.End() != b {
					t.Errorf("endpoints not preserved: %v", p)
				}
			}
		}
	}
}

func TestNewRouterInvalidSpacing(t *testing.T) {
	if _, err := NewRouter(0, geom.DefaultTolerance, nil); !errors.Is(err, geom.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
	r := &Router{GridSpacing: -1}
	if _, err := r.Route(geom.Pt(0, 0), geom.Pt(1, 1), Auto); !errors.Is(err, geom.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration from Route, got %v", err)
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{"": Auto, "AUTO": Auto, "h": HFirst, "vfirst": VFirst, "direct": Direct} {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseStrategy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseStrategy("diagonal"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
