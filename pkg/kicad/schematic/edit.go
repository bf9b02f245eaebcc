package schematic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/viant/afs"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
	"github.com/OpenTraceLab/kiwire/pkg/kicad/sexp/kicadsexp"
)

// DefaultJunctionDiameter of 0 tells KiCad to use the sheet default.
const DefaultJunctionDiameter = 0

// trailing are top-level sections that KiCad writes after all drawing
// items. New records go in front of them.
var trailing = map[string]bool{
	"sheet_instances":  true,
	"symbol_instances": true,
	"embedded_fonts":   true,
}

// AddWire appends a wire through points and returns it with a fresh UUID.
func (s *Schematic) AddWire(points []geom.Point) (Wire, error) {
	if len(points) < 2 {
		return Wire{}, fmt.Errorf("wire needs at least 2 points, got %d", len(points))
	}
	w := Wire{Points: append([]geom.Point(nil), points...), UUID: uuid.NewString()}
	s.Wires = append(s.Wires, w)
	s.insert(FormatWire(w))
	return w, nil
}

// AddJunction appends a junction at p and returns it with a fresh UUID.
func (s *Schematic) AddJunction(p geom.Point) Junction {
	j := Junction{Position: p, Diameter: DefaultJunctionDiameter, UUID: uuid.NewString()}
	s.Junctions = append(s.Junctions, j)
	s.insert(FormatJunction(j))
	return j
}

func (s *Schematic) insert(node *kicadsexp.List) {
	if s.root == nil {
		s.root = kicadsexp.Node("kicad_sch",
			kicadsexp.Node("version", kicadsexp.Int(s.Version)),
			kicadsexp.Node("generator", kicadsexp.Quoted(s.Generator)),
		)
	}
	for i, elem := range s.root.Elements() {
		if trailing[kicadsexp.Key(elem)] {
			s.root.Insert(i, node)
			return
		}
	}
	s.root.Append(node)
}

// FormatWire renders w as a (wire ...) record.
func FormatWire(w Wire) *kicadsexp.List {
	pts := kicadsexp.Node("pts")
	for _, p := range w.Points {
		pts.Append(kicadsexp.Node("xy", kicadsexp.Float(p.X), kicadsexp.Float(p.Y)))
	}
	return kicadsexp.Node("wire",
		pts,
		kicadsexp.Node("stroke",
			kicadsexp.Node("width", kicadsexp.Int(0)),
			kicadsexp.Node("type", kicadsexp.Symbol("default")),
		),
		kicadsexp.Node("uuid", kicadsexp.Quoted(w.UUID)),
	)
}

// FormatJunction renders j as a (junction ...) record.
func FormatJunction(j Junction) *kicadsexp.List {
	return kicadsexp.Node("junction",
		kicadsexp.Node("at", kicadsexp.Float(j.Position.X), kicadsexp.Float(j.Position.Y)),
		kicadsexp.Node("diameter", kicadsexp.Float(j.Diameter)),
		kicadsexp.Node("color", kicadsexp.Int(0), kicadsexp.Int(0), kicadsexp.Int(0), kicadsexp.Int(0)),
		kicadsexp.Node("uuid", kicadsexp.Quoted(j.UUID)),
	)
}

// Encode writes the whole document, including records added since it was
// parsed.
func (s *Schematic) Encode(w io.Writer) error {
	if s.root == nil {
		return fmt.Errorf("schematic has no document")
	}
	return kicadsexp.Format(w, s.root, 0)
}

// Save encodes the document to a local path or afs URL.
func (s *Schematic) Save(ctx context.Context, URL string) error {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return err
	}
	fs := afs.New()
	if err := fs.Upload(ctx, URL, os.FileMode(0o644), &buf); err != nil {
		return fmt.Errorf("failed to write %s: %w", URL, err)
	}
	return nil
}
