// Package pins resolves library-local pin definitions into absolute
// schematic-space pins for a placed component.
package pins

import (
	"fmt"
	"math"
	"strings"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
)

// ElectricalNoConnect is the electrical type of pins that are intentionally
// left unconnected.
const ElectricalNoConnect = "no_connect"

// Orientation is a cardinal direction in drawing space. For a pin it points
// from the connection point toward the symbol body.
type Orientation int

const (
	Right Orientation = iota
	Up
	Left
	Down
)

var orientationNames = [...]string{"right", "up", "left", "down"}

func (o Orientation) String() string {
	if o < Right || o > Down {
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
	return orientationNames[o]
}

// OrientationFromAngle converts a library pin angle (0/90/180/270, degrees
// counter-clockwise in Y-up library space) to an Orientation.
func OrientationFromAngle(deg float64) (Orientation, error) {
	r, err := RotationFromDegrees(deg)
	if err != nil {
		return Right, err
	}
	return Orientation(r / 90), nil
}

// libVector is the unit vector of o in Y-up library space.
func (o Orientation) libVector() geom.Point {
	switch o {
	case Up:
		return geom.Pt(0, 1)
	case Left:
		return geom.Pt(-1, 0)
	case Down:
		return geom.Pt(0, -1)
	default:
		return geom.Pt(1, 0)
	}
}

// orientationOf maps a Y-down drawing-space unit vector back to a name.
func orientationOf(v geom.Point) Orientation {
	if math.Abs(v.X) >= math.Abs(v.Y) {
		if v.X >= 0 {
			return Right
		}
		return Left
	}
	if v.Y < 0 {
		return Up
	}
	return Down
}

// Rotation is a component rotation in degrees.
type Rotation int

// ValidRotations lists the rotations a placement may use.
var ValidRotations = []Rotation{0, 90, 180, 270}

// Valid reports whether r is one of ValidRotations.
func (r Rotation) Valid() bool {
	switch r {
	case 0, 90, 180, 270:
		return true
	}
	return false
}

// RotationFromDegrees normalizes an angle read from a file (e.g. -90 or
// 360) into a Rotation. Angles that are not multiples of 90 are rejected.
func RotationFromDegrees(deg float64) (Rotation, error) {
	n := math.Round(deg)
	if math.Abs(deg-n) > 1e-6 || math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0, &InvalidRotationError{Rotation: deg, Valid: ValidRotations}
	}
	r := int(n) % 360
	if r < 0 {
		r += 360
	}
	if r%90 != 0 {
		return 0, &InvalidRotationError{Rotation: deg, Valid: ValidRotations}
	}
	return Rotation(r), nil
}

// Mirror selects a mirror axis applied before rotation.
type Mirror int

const (
	MirrorNone Mirror = iota
	MirrorX
	MirrorY
)

func (m Mirror) String() string {
	switch m {
	case MirrorX:
		return "x"
	case MirrorY:
		return "y"
	default:
		return "none"
	}
}

// ParseMirror accepts "", "none", "x" or "y".
func ParseMirror(s string) (Mirror, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return MirrorNone, nil
	case "x":
		return MirrorX, nil
	case "y":
		return MirrorY, nil
	}
	return MirrorNone, fmt.Errorf("pins: unknown mirror mode %q (expected none, x or y)", s)
}

// Definition is a pin as the symbol library describes it. Position is in
// library space, where Y increases upward.
type Definition struct {
	Number         string
	Name           string
	ElectricalType string
	Position       geom.Point
	Orientation    Orientation
}

// Placement is a component instance on the sheet.
type Placement struct {
	LibID    string
	Position geom.Point
	Rotation Rotation
	Mirror   Mirror
}

// Resolved is a pin in absolute drawing space.
type Resolved struct {
	ComponentRef   string      `json:"component"`
	Number         string      `json:"number"`
	Name           string      `json:"name,omitempty"`
	ElectricalType string      `json:"type,omitempty"`
	Position       geom.Point  `json:"position"`
	Orientation    Orientation `json:"-"`
}

// IsNoConnect reports whether the pin's electrical type marks it as
// intentionally unconnected.
func (r Resolved) IsNoConnect() bool {
	return r.ElectricalType == ElectricalNoConnect
}

// Key identifies the pin across components.
func (r Resolved) Key() Key {
	return Key{Component: r.ComponentRef, Number: r.Number}
}

// Key names a pin by component reference and pin number.
type Key struct {
	Component string `json:"component"`
	Number    string `json:"number"`
}

func (k Key) String() string {
	return k.Component + "." + k.Number
}
