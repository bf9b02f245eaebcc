package pins

import (
	"errors"
	"math"
	"testing"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
)

// resistorPins mirrors KiCad's Device:R: pin 1 on top, pin 2 at the bottom.
func resistorPins() []Definition {
	return []Definition{
		{Number: "1", Name: "~", ElectricalType: "passive", Position: geom.Pt(0, 3.81), Orientation: Down},
		{Number: "2", Name: "~", ElectricalType: "passive", Position: geom.Pt(0, -3.81), Orientation: Up},
	}
}

func near(a, b geom.Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestResolvePinsRotation(t *testing.T) {
	origin := geom.Pt(100, 100)
	tests := []struct {
		rotation Rotation
		pin1     geom.Point
		pin2     geom.Point
		orient1  Orientation
	}{
		{0, geom.Pt(100, 96.19), geom.Pt(100, 103.81), Down},
		{90, geom.Pt(96.19, 100), geom.Pt(103.81, 100), Right},
		{180, geom.Pt(100, 103.81), geom.Pt(100, 96.19), Up},
		{270, geom.Pt(103.81, 100), geom.Pt(96.19, 100), Left},
	}

	r := NewResolver(nil)
	for _, tt := range tests {
		got, err := r.ResolvePins("R1", Placement{LibID: "Device:R", Position: origin, Rotation: tt.rotation}, resistorPins())
		if err != nil {
			t.Fatalf("rotation %d: %v", tt.rotation, err)
		}
		if !near(got[0].Position, tt.pin1) || !near(got[1].Position, tt.pin2) {
			t.Errorf("rotation %d: got %v / %v, want %v / %v",
				tt.rotation, got[0].Position, got[1].Position, tt.pin1, tt.pin2)
		}
		if got[0].Orientation != tt.orient1 {
			t.Errorf("rotation %d: pin 1 orientation %v, want %v", tt.rotation, got[0].Orientation, tt.orient1)
		}
		if got[0].ComponentRef != "R1" || got[0].Number != "1" {
			t.Errorf("metadata not carried over: %+v", got[0])
		}
	}
}

func TestResolvePinsMirror(t *testing.T) {
	defs := []Definition{
		{Number: "1", Position: geom.Pt(-5.08, 2.54), Orientation: Right},
	}
	r := &Resolver{}

	tests := []struct {
		mirror Mirror
		want   geom.Point
		orient Orientation
	}{
		{MirrorNone, geom.Pt(-5.08, -2.54), Right},
		{MirrorX, geom.Pt(5.08, -2.54), Left},
		{MirrorY, geom.Pt(-5.08, 2.54), Right},
	}
	for _, tt := range tests {
		got, err := r.ResolvePins("U1", Placement{Mirror: tt.mirror}, defs)
		if err != nil {
			t.Fatal(err)
		}
		if !near(got[0].Position, tt.want) || got[0].Orientation != tt.orient {
			t.Errorf("mirror %v: got %v %v, want %v %v", tt.mirror, got[0].Position, got[0].Orientation, tt.want, tt.orient)
		}
	}
}

func TestTwoTerminalPinsNeverCollapse(t *testing.T) {
	r := NewResolver(nil)
	positions := []geom.Point{geom.Pt(0, 0), geom.Pt(50.8, 25.4), geom.Pt(-12.7, 1000)}

	for _, rot := range ValidRotations {
		for _, m := range []Mirror{MirrorNone, MirrorX, MirrorY} {
			for _, pos := range positions {
				got, err := r.ResolvePins("R1", Placement{LibID: "Device:R", Position: pos, Rotation: rot, Mirror: m}, resistorPins())
				if err != nil {
					t.Fatal(err)
				}
				if got[0].Position.Near(got[1].Position, geom.DefaultTolerance) {
					t.Errorf("rot %d mirror %v at %v: pins collapsed to %v", rot, m, pos, got[0].Position)
				}
				for _, p := range got {
					if p.Orientation < Right || p.Orientation > Down {
						t.Errorf("orientation out of range: %v", p.Orientation)
					}
				}
			}
		}
	}
}

func TestResolvePinsInvalidRotation(t *testing.T) {
	r := NewResolver(nil)
	_, err := r.ResolvePins("R1", Placement{Rotation: 45}, resistorPins())
	if !errors.Is(err, ErrInvalidRotation) {
		t.Fatalf("expected ErrInvalidRotation, got %v", err)
	}
	var rotErr *InvalidRotationError
	if !errors.As(err, &rotErr) {
		t.Fatalf("expected *InvalidRotationError, got %T", err)
	}
	if rotErr.Rotation != 45 || len(rotErr.Valid) != 4 {
		t.Errorf("unexpected error payload: %+v", rotErr)
	}
}

func TestRotationFromDegrees(t *testing.T) {
	tests := []struct {
		in   float64
		want Rotation
	}{
		{0, 0}, {90, 90}, {-90, 270}, {360, 0}, {450, 90}, {180.0000001, 180},
	}
	for _, tt := range tests {
		got, err := RotationFromDegrees(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("RotationFromDegrees(%g) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
	if _, err := RotationFromDegrees(30); !errors.Is(err, ErrInvalidRotation) {
		t.Errorf("30 degrees should be rejected, got %v", err)
	}
}

func TestResolvePinNotFound(t *testing.T) {
	r := NewResolver(nil)
	_, err := r.ResolvePin("R1", Placement{}, resistorPins(), "3")
	var nf *PinNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected PinNotFoundError, got %v", err)
	}
	if nf.Component != "R1" || len(nf.Available) != 2 || nf.Available[0] != "1" {
		t.Errorf("unexpected error payload: %+v", nf)
	}
	if !errors.Is(err, ErrPinNotFound) {
		t.Error("errors.Is(err, ErrPinNotFound) should hold")
	}
}

func TestResolvePinByName(t *testing.T) {
	defs := []Definition{
		{Number: "1", Name: "VCC", Position: geom.Pt(0, 5.08), Orientation: Down},
		{Number: "2", Name: "GND", Position: geom.Pt(0, -5.08), Orientation: Up},
	}
	got, err := NewResolver(nil).ResolvePin("U1", Placement{Position: geom.Pt(10, 10)}, defs, "GND")
	if err != nil {
		t.Fatal(err)
	}
	if got.Number != "2" || !near(got.Position, geom.Pt(10, 15.08)) {
		t.Errorf("unexpected pin %+v", got)
	}
}

func TestTransformCache(t *testing.T) {
	r := NewResolver(nil)
	defs := resistorPins()

	for i := 0; i < 3; i++ {
		pos := geom.Pt(float64(i)*10, 0)
		if _, err := r.ResolvePins("R", Placement{LibID: "Device:R", Position: pos, Rotation: 90}, defs); err != nil {
			t.Fatal(err)
		}
	}
	hits, misses := r.Cache.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("expected 2 hits / 1 miss, got %d / %d", hits, misses)
	}

	// changed library data must not be served from the stale entry
	changed := resistorPins()
	changed[0].Position = geom.Pt(0, 5.08)
	got, err := r.ResolvePins("R", Placement{LibID: "Device:R", Rotation: 90}, changed)
	if err != nil {
		t.Fatal(err)
	}
	if !near(got[0].Position, geom.Pt(-5.08, 0)) {
		t.Errorf("stale cache entry served: %v", got[0].Position)
	}

	r.Cache.Invalidate("Device:R")
	if r.Cache.Len() != 0 {
		t.Errorf("expected empty cache after Invalidate, got %d entries", r.Cache.Len())
	}
}

func TestFingerprint(t *testing.T) {
	a := resistorPins()
	b := resistorPins()
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("equal definitions must share a fingerprint")
	}
	b[1].Name = "B"
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("different definitions should not share a fingerprint")
	}
}
