package pins

import "github.com/OpenTraceLab/kiwire/pkg/geom"

// Transform maps library-space coordinates into drawing space relative to
// the component origin. It covers everything but the final translation, so
// one Transform serves every placement sharing rotation and mirror.
//
// Order: flip Y (library Y-up to drawing Y-down), mirror, then rotate.
// Rotation is counter-clockwise as seen on screen: at 90 degrees a point on
// the +X axis moves to -Y (up).
type Transform struct {
	Rotation Rotation
	Mirror   Mirror
}

// NewTransform validates the rotation.
func NewTransform(r Rotation, m Mirror) (Transform, error) {
	if !r.Valid() {
		return Transform{}, &InvalidRotationError{Rotation: float64(r), Valid: ValidRotations}
	}
	return Transform{Rotation: r, Mirror: m}, nil
}

// Apply transforms a library-space offset.
func (t Transform) Apply(local geom.Point) geom.Point {
	p := geom.Pt(local.X, -local.Y)
	switch t.Mirror {
	case MirrorX:
		p.X = -p.X
	case MirrorY:
		p.Y = -p.Y
	}
	switch t.Rotation {
	case 90:
		p = geom.Pt(p.Y, -p.X)
	case 180:
		p = geom.Pt(-p.X, -p.Y)
	case 270:
		p = geom.Pt(-p.Y, p.X)
	}
	// normalize -0 so formatted output stays stable
	return geom.Pt(p.X+0, p.Y+0)
}

// ApplyOrientation transforms a library-space direction.
func (t Transform) ApplyOrientation(o Orientation) Orientation {
	return orientationOf(t.Apply(o.libVector()))
}
