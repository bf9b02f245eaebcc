package geom

import "math"

// Segment is a straight line between two points.
type Segment struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Seg is shorthand for Segment{Start: a, End: b}.
func Seg(a, b Point) Segment {
	return Segment{Start: a, End: b}
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return s.Start.Distance(s.End)
}

// Vector returns End - Start.
func (s Segment) Vector() Point {
	return s.End.Sub(s.Start)
}

// IsHorizontal reports whether both ends share Y within tol.
func (s Segment) IsHorizontal(tol float64) bool {
	return math.Abs(s.Start.Y-s.End.Y) <= tol
}

// IsVertical reports whether both ends share X within tol.
func (s Segment) IsVertical(tol float64) bool {
	return math.Abs(s.Start.X-s.End.X) <= tol
}

// IsDegenerate reports whether the segment is shorter than tol.
func (s Segment) IsDegenerate(tol float64) bool {
	return s.Length() <= tol
}

// Bounds returns the axis-aligned bounding box of the segment.
func (s Segment) Bounds() (min, max Point) {
	return Point{X: math.Min(s.Start.X, s.End.X), Y: math.Min(s.Start.Y, s.End.Y)},
		Point{X: math.Max(s.Start.X, s.End.X), Y: math.Max(s.Start.Y, s.End.Y)}
}

// ClosestParam returns the parameter t in [0,1] of the point on the segment
// closest to p.
func (s Segment) ClosestParam(p Point) float64 {
	d := s.Vector()
	l2 := d.X*d.X + d.Y*d.Y
	if l2 == 0 {
		return 0
	}
	t := ((p.X-s.Start.X)*d.X + (p.Y-s.Start.Y)*d.Y) / l2
	return math.Max(0, math.Min(1, t))
}

// At returns Start + t*(End-Start).
func (s Segment) At(t float64) Point {
	return s.Start.Add(s.Vector().Scale(t))
}

// DistanceTo returns the distance from p to the nearest point of the segment.
func (s Segment) DistanceTo(p Point) float64 {
	return s.At(s.ClosestParam(p)).Distance(p)
}

// Contains reports whether p lies on the segment, endpoints included.
func (s Segment) Contains(p Point, tol float64) bool {
	return s.DistanceTo(p) <= tol
}

// ContainsInterior reports whether p lies on the segment but farther than
// tol from both endpoints.
func (s Segment) ContainsInterior(p Point, tol float64) bool {
	if s.Start.Near(p, tol) || s.End.Near(p, tol) {
		return false
	}
	return s.Contains(p, tol)
}

// HasEndpoint reports whether p is within tol of either end.
func (s Segment) HasEndpoint(p Point, tol float64) bool {
	return s.Start.Near(p, tol) || s.End.Near(p, tol)
}

// CollinearOverlap returns the shared stretch of two collinear segments.
// ok is false when the segments are not collinear within tol or when they
// share less than tol of length.
func CollinearOverlap(a, b Segment, tol float64) (overlap Segment, ok bool) {
	la := a.Length()
	if la <= tol || b.Length() <= tol {
		return Segment{}, false
	}
	// both ends of b must sit on the infinite line through a
	if lineDistance(a, b.Start) > tol || lineDistance(a, b.End) > tol {
		return Segment{}, false
	}
	u := a.Vector().Scale(1 / la)
	proj := func(p Point) float64 {
		d := p.Sub(a.Start)
		return d.X*u.X + d.Y*u.Y
	}
	b0, b1 := proj(b.Start), proj(b.End)
	if b0 > b1 {
		b0, b1 = b1, b0
	}
	lo := math.Max(0, b0)
	hi := math.Min(la, b1)
	if hi-lo <= tol {
		return Segment{}, false
	}
	return Segment{Start: a.Start.Add(u.Scale(lo)), End: a.Start.Add(u.Scale(hi))}, true
}

// lineDistance is the distance from p to the infinite line through s.
func lineDistance(s Segment, p Point) float64 {
	d := s.Vector()
	l := math.Hypot(d.X, d.Y)
	if l == 0 {
		return s.Start.Distance(p)
	}
	return math.Abs(d.X*(p.Y-s.Start.Y)-d.Y*(p.X-s.Start.X)) / l
}

// Segments splits a polyline into consecutive segments.
func Segments(points []Point) []Segment {
	if len(points) < 2 {
		return nil
	}
	segs := make([]Segment, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		segs = append(segs, Segment{Start: points[i], End: points[i+1]})
	}
	return segs
}
