// Package geom provides the schematic-space geometry shared by pin resolution,
// routing, junction detection and connectivity.
//
// Coordinates are millimeters with Y increasing downward, matching the
// schematic file convention. Point equality is exact; every geometric
// comparison in this module goes through an explicit tolerance instead.
package geom

import (
	"fmt"
	"math"
	"strconv"
)

// DefaultTolerance is the distance (mm) under which two positions are
// considered coincident.
const DefaultTolerance = 0.01

// Point is a 2D position in schematic space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Scale returns the point scaled by a factor.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Manhattan returns |dx| + |dy| between two points.
func (p Point) Manhattan(o Point) float64 {
	return math.Abs(p.X-o.X) + math.Abs(p.Y-o.Y)
}

// Near reports whether o lies within tol of p.
func (p Point) Near(o Point, tol float64) bool {
	return p.Distance(o) <= tol
}

// Less orders points by X, then Y. Reports use it for deterministic output.
func (p Point) Less(o Point) bool {
	if p.X != o.X {
		return p.X < o.X
	}
	return p.Y < o.Y
}

func (p Point) String() string {
	return fmt.Sprintf("(%s, %s)", formatMM(p.X), formatMM(p.Y))
}

// formatMM prints at most four decimals without trailing zeros.
func formatMM(v float64) string {
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// ComparePoints orders points by X then Y, treating coordinates closer than
// tol as equal. It returns -1, 0 or +1.
func ComparePoints(a, b Point, tol float64) int {
	if math.Abs(a.X-b.X) > tol {
		if a.X < b.X {
			return -1
		}
		return 1
	}
	if math.Abs(a.Y-b.Y) > tol {
		if a.Y < b.Y {
			return -1
		}
		return 1
	}
	return 0
}
