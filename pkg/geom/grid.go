package geom

import "math"

// Common KiCad schematic grid spacings in millimeters.
const (
	GridFine     = 0.635
	GridDefault  = 1.27
	GridStandard = 2.54
)

// Snap rounds each coordinate of p to the nearest multiple of spacing.
// Halfway values round away from zero.
func Snap(p Point, spacing float64) (Point, error) {
	if err := CheckSpacing(spacing); err != nil {
		return Point{}, err
	}
	return Point{X: snapValue(p.X, spacing), Y: snapValue(p.Y, spacing)}, nil
}

// MustSnap is Snap for spacings already validated by the caller.
func MustSnap(p Point, spacing float64) Point {
	s, err := Snap(p, spacing)
	if err != nil {
		panic(err)
	}
	return s
}

// IsAligned reports whether both coordinates of p lie within tol of a
// multiple of spacing.
func IsAligned(p Point, spacing, tol float64) (bool, error) {
	if err := CheckSpacing(spacing); err != nil {
		return false, err
	}
	if err := CheckTolerance(tol); err != nil {
		return false, err
	}
	return math.Abs(p.X-snapValue(p.X, spacing)) <= tol &&
		math.Abs(p.Y-snapValue(p.Y, spacing)) <= tol, nil
}

func snapValue(v, spacing float64) float64 {
	// math.Round already rounds half away from zero
	n := math.Round(v / spacing)
	if n == 0 {
		return 0
	}
	return n * spacing
}
