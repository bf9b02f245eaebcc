package route

import (
	"fmt"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
)

// Path is an ordered list of at least two points.
type Path []geom.Point

// Start returns the first point.
func (p Path) Start() geom.Point {
	return p[0]
}

// End returns the last point.
func (p Path) End() geom.Point {
	return p[len(p)-1]
}

// Segments splits the path into consecutive segments.
func (p Path) Segments() []geom.Segment {
	return geom.Segments(p)
}

// Length returns the sum of segment lengths. For an orthogonal path this
// equals the Manhattan distance between its ends.
func (p Path) Length() float64 {
	return Length(p)
}

// Length sums the Euclidean lengths of consecutive pairs.
func Length(points []geom.Point) float64 {
	total := 0.0
	for i := 0; i+1 < len(points); i++ {
		total += points[i].Distance(points[i+1])
	}
	return total
}

// Corners returns the interior points of the path.
func (p Path) Corners() []geom.Point {
	if len(p) <= 2 {
		return nil
	}
	return p[1 : len(p)-1]
}

// IsDegenerate reports whether the path is a single zero-length segment.
func (p Path) IsDegenerate(tol float64) bool {
	return len(p) == 2 && p[0].Near(p[1], tol)
}

// Validate checks the path invariants: at least two points, every segment
// horizontal or vertical, and no zero-length segment unless the whole path
// is the degenerate [p, p].
func (p Path) Validate(tol float64) error {
	if len(p) < 2 {
		return fmt.Errorf("route: path needs at least 2 points, got %d", len(p))
	}
	if p.IsDegenerate(tol) {
		return nil
	}
	for i, s := range p.Segments() {
		if s.IsDegenerate(tol) {
			return fmt.Errorf("route: segment %d from %v to %v has zero length", i, s.Start, s.End)
		}
		if !s.IsHorizontal(tol) && !s.IsVertical(tol) {
			return fmt.Errorf("route: segment %d from %v to %v is not axis aligned", i, s.Start, s.End)
		}
	}
	return nil
}
