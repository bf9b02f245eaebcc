package schematic

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	chewxy "github.com/chewxy/sexp"
	"github.com/google/uuid"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
	"github.com/OpenTraceLab/kiwire/pkg/kicad/sexp/kicadsexp"
)

func TestFormatWire(t *testing.T) {
	w := Wire{
		Points: []geom.Point{geom.Pt(101.6, 105.41), geom.Pt(101.6, 121.92), geom.Pt(152.4, 121.92)},
		UUID:   "9d1b3a52-6f0c-4b0e-8a53-3f5f1e2c7d11",
	}
	got := kicadsexp.FormatString(FormatWire(w), 1)
	want := "\t(wire\n" +
		"\t\t(pts (xy 101.6 105.41) (xy 101.6 121.92) (xy 152.4 121.92))\n" +
		"\t\t(stroke (width 0) (type default))\n" +
		"\t\t(uuid \"9d1b3a52-6f0c-4b0e-8a53-3f5f1e2c7d11\")\n" +
		"\t)\n"
	if got != want {
		t.Errorf("FormatWire:\n%s\nwant:\n%s", got, want)
	}

	// An independent reader must accept the record as one list.
	exprs, err := chewxy.ParseString(got)
	if err != nil {
		t.Fatalf("chewxy/sexp rejected record: %v", err)
	}
	if len(exprs) != 1 || exprs[0].IsLeaf() {
		t.Fatalf("chewxy/sexp: got %d expressions", len(exprs))
	}
	if head := exprs[0].Head(); head == nil || fmt.Sprint(head) != "wire" {
		t.Errorf("chewxy/sexp head = %v", head)
	}
}

func TestFormatJunction(t *testing.T) {
	j := Junction{Position: geom.Pt(127, 97.79), UUID: "u"}
	got := FormatJunction(j).String()
	want := `(junction (at 127 97.79) (diameter 0) (color 0 0 0 0) (uuid "u"))`
	if got != want {
		t.Errorf("FormatJunction = %s", got)
	}
	if _, err := chewxy.ParseString(got); err != nil {
		t.Errorf("chewxy/sexp rejected record: %v", err)
	}
}

func TestAddAndEncode(t *testing.T) {
	sch := loadDivider(t)

	w, err := sch.AddWire([]geom.Point{geom.Pt(101.6, 105.41), geom.Pt(88.9, 105.41)})
	if err != nil {
		t.Fatalf("AddWire: %v", err)
	}
	if _, err := uuid.Parse(w.UUID); err != nil {
		t.Errorf("AddWire UUID %q: %v", w.UUID, err)
	}
	j := sch.AddJunction(geom.Pt(101.6, 105.41))
	if j.UUID == w.UUID {
		t.Error("UUIDs must be unique")
	}
	if _, err := sch.AddWire([]geom.Point{geom.Pt(0, 0)}); err == nil {
		t.Error("single point wire accepted")
	}

	var buf bytes.Buffer
	if err := sch.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := buf.String()
	if strings.Index(out, w.UUID) > strings.Index(out, "(sheet_instances") {
		t.Error("new records must precede sheet_instances")
	}

	again, err := Parse(&buf)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(again.Wires) != 4 || len(again.Junctions) != 2 || len(again.Symbols) != 4 {
		t.Errorf("reparsed %d wires, %d junctions, %d symbols", len(again.Wires), len(again.Junctions), len(again.Symbols))
	}
	if again.Wires[3].UUID != w.UUID {
		t.Errorf("last wire = %s, want %s", again.Wires[3].UUID, w.UUID)
	}
	if len(again.LibSymbols) != 3 || again.GetSymbol("U1").Unit != 2 {
		t.Error("untouched content changed on rewrite")
	}
}

func TestSave(t *testing.T) {
	sch := loadDivider(t)
	sch.AddJunction(geom.Pt(1.27, 2.54))

	location := filepath.Join(t.TempDir(), "out.kicad_sch")
	if err := sch.Save(context.Background(), location); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(context.Background(), location)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(back.Junctions) != 2 || back.Junctions[1].Position != geom.Pt(1.27, 2.54) {
		t.Errorf("junctions after save = %+v", back.Junctions)
	}
}
