// Package route computes orthogonal ("Manhattan") wire paths between two
// points with at most one corner.
package route

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
)

// Strategy selects how the corner of a two-segment path is placed.
type Strategy int

const (
	// Auto picks HFirst when the horizontal span exceeds the vertical one,
	// VFirst otherwise (ties included).
	Auto Strategy = iota
	// Direct connects the points with a single segment.
	Direct
	// HFirst runs horizontally from start, then vertically to end.
	HFirst
	// VFirst runs vertically from start, then horizontally to end.
	VFirst
)

func (s Strategy) String() string {
	switch s {
	case Auto:
		return "auto"
	case Direct:
		return "direct"
	case HFirst:
		return "hfirst"
	case VFirst:
		return "vfirst"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy accepts the names returned by Strategy.String plus a few
// common spellings.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "direct", "straight":
		return Direct, nil
	case "hfirst", "h", "horizontal", "horizontal-first":
		return HFirst, nil
	case "vfirst", "v", "vertical", "vertical-first":
		return VFirst, nil
	}
	return Auto, fmt.Errorf("route: unknown strategy %q (expected auto, direct, hfirst or vfirst)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Router computes paths. Use NewRouter to get validated settings.
type Router struct {
	GridSpacing float64
	Tolerance   float64
	Logger      *slog.Logger
}

// NewRouter validates the grid spacing and tolerance.
func NewRouter(gridSpacing, tolerance float64, logger *slog.Logger) (*Router, error) {
	if err := geom.CheckSpacing(gridSpacing); err != nil {
		return nil, err
	}
	if err := geom.CheckTolerance(tolerance); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Router{GridSpacing: gridSpacing, Tolerance: tolerance, Logger: logger}, nil
}

// Route returns a path from start to end.
func (r *Router) Route(start, end geom.Point, strategy Strategy) (Path, error) {
	if err := geom.CheckSpacing(r.GridSpacing); err != nil {
		return nil, err
	}

	chosen := Choose(start, end, strategy)
	if chosen == Direct {
		return Path{start, end}, nil
	}

	raw := geom.Pt(end.X, start.Y)
	if chosen == VFirst {
		raw = geom.Pt(start.X, end.Y)
	}
	corner := geom.MustSnap(raw, r.GridSpacing)
	if !r.keepsAxes(start, corner, end) {
		// snapping moved the corner off one of the legs; an off-grid
		// endpoint wins over grid alignment
		corner = raw
	}

	if corner.Near(start, r.Tolerance) || corner.Near(end, r.Tolerance) {
		r.logger().Debug("route degenerated to single segment",
			slog.String("strategy", chosen.String()),
			slog.String("start", start.String()),
			slog.String("end", end.String()))
		return Path{start, end}, nil
	}

	r.logger().Debug("routed",
		slog.String("strategy", chosen.String()),
		slog.String("start", start.String()),
		slog.String("corner", corner.String()),
		slog.String("end", end.String()))
	return Path{start, corner, end}, nil
}

func (r *Router) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r.Logger
}

// keepsAxes reports whether start→corner and corner→end are both axis
// aligned within tolerance.
func (r *Router) keepsAxes(start, corner, end geom.Point) bool {
	a := geom.Seg(start, corner)
	b := geom.Seg(corner, end)
	return (a.IsHorizontal(r.Tolerance) || a.IsVertical(r.Tolerance)) &&
		(b.IsHorizontal(r.Tolerance) || b.IsVertical(r.Tolerance))
}

// Choose resolves Auto into HFirst or VFirst; other strategies pass
// through unchanged.
func Choose(start, end geom.Point, s Strategy) Strategy {
	if s != Auto {
		return s
	}
	dx := math.Abs(end.X - start.X)
	dy := math.Abs(end.Y - start.Y)
	if dx > dy {
		return HFirst
	}
	return VFirst
}
