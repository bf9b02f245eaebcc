// Package pinref parses the endpoint syntax accepted on the command line:
// a component pin such as "R1.2" or "U3:VCC", or a literal point such as
// "(10.16, -5.08)".
package pinref

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
)

// endpointLexer tokenizes endpoint references. Numbers are tried before
// identifiers so that "-5.08" is a number and "R1" an identifier. The
// separator after a reference switches to the Pin state, where a pin
// number or name is one token even when it starts with a digit ("1A",
// "3V3").
var endpointLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Float", Pattern: `-?\d+(\.\d+)?`},
		{Name: "Ident", Pattern: `[A-Za-z_#~+/{][A-Za-z0-9_#~+\-/{}!?@]*`},
		{Name: "Sep", Pattern: `[.:]`, Action: lexer.Push("Pin")},
		{Name: "Punct", Pattern: `[(),]`},
	},
	"Pin": {
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "PinName", Pattern: `[0-9A-Za-z_~{}+\-#/!]+`, Action: lexer.Pop()},
	},
})

// Endpoint is either a pin reference or a point.
type Endpoint struct {
	Pos lexer.Position

	Point *PointLit `parser:"  @@"`
	Pin   *PinLit   `parser:"| @@"`
}

// PointLit is "(x, y)" in millimetres.
type PointLit struct {
	X float64 `parser:"\"(\" @Float \",\""`
	Y float64 `parser:"@Float \")\""`
}

// PinLit is "REF.PIN" or "REF:PIN". PIN matches a pin number first, then
// a pin name.
type PinLit struct {
	Ref string `parser:"@Ident"`
	Sep string `parser:"@Sep"`
	Pin string `parser:"@PinName"`
}

var parser = participle.MustBuild[Endpoint](
	participle.Lexer(endpointLexer),
	participle.Elide("Whitespace"),
)

// Parse parses one endpoint.
func Parse(s string) (*Endpoint, error) {
	ep, err := parser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("pinref: %q: %w", s, err)
	}
	return ep, nil
}

// IsPoint reports whether the endpoint is a literal point.
func (e *Endpoint) IsPoint() bool {
	return e.Point != nil
}

// Position returns the literal point. It is the zero point for pin
// references.
func (e *Endpoint) Position() geom.Point {
	if e.Point == nil {
		return geom.Point{}
	}
	return geom.Pt(e.Point.X, e.Point.Y)
}

func (e *Endpoint) String() string {
	if e.Point != nil {
		return geom.Pt(e.Point.X, e.Point.Y).String()
	}
	if e.Pin != nil {
		return e.Pin.Ref + "." + e.Pin.Pin
	}
	return ""
}
