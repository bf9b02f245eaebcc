package schematic

import (
	"context"
	"strings"
	"testing"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
)

func loadDivider(t *testing.T) *Schematic {
	t.Helper()
	sch, err := Load(context.Background(), "testdata/divider.kicad_sch")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return sch
}

func TestParseMinimalSchematic(t *testing.T) {
	input := `(kicad_sch
		(version 20250114)
		(generator "eeschema")
		(generator_version "9.0")
		(uuid 862335ee-c981-4fe1-9eb9-84db19301dd4)
		(paper "A4")
		(lib_symbols)
		(sheet_instances
			(path "/"
				(page "1")
			)
		)
	)`

	sch, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to parse schematic: %v", err)
	}

	if sch.Version != 20250114 {
		t.Errorf("Expected version 20250114, got %d", sch.Version)
	}
	if sch.Generator != "eeschema" {
		t.Errorf("Expected generator 'eeschema', got '%s'", sch.Generator)
	}
	if sch.GeneratorVer != "9.0" {
		t.Errorf("Expected generator version '9.0', got '%s'", sch.GeneratorVer)
	}
	if sch.UUID != "862335ee-c981-4fe1-9eb9-84db19301dd4" {
		t.Errorf("Expected bare uuid, got '%s'", sch.UUID)
	}
	if sch.Paper != "A4" {
		t.Errorf("Expected paper 'A4', got '%s'", sch.Paper)
	}
}

func TestParseFile(t *testing.T) {
	sch := loadDivider(t)

	if sch.TitleBlock.Title != "Divider" || sch.TitleBlock.Revision != "A" {
		t.Errorf("title block = %+v", sch.TitleBlock)
	}
	if len(sch.LibSymbols) != 3 {
		t.Errorf("Expected 3 lib symbols, got %d", len(sch.LibSymbols))
	}
	if len(sch.Symbols) != 4 {
		t.Errorf("Expected 4 symbol instances, got %d", len(sch.Symbols))
	}
	if len(sch.Wires) != 3 {
		t.Errorf("Expected 3 wires, got %d", len(sch.Wires))
	}
	if len(sch.Junctions) != 1 || sch.Junctions[0].Position != geom.Pt(127, 97.79) {
		t.Errorf("junctions = %+v", sch.Junctions)
	}
	if len(sch.NoConnects) != 1 {
		t.Errorf("Expected 1 no-connect, got %d", len(sch.NoConnects))
	}
	if len(sch.Labels) != 1 || sch.Labels[0].Text != "MID" {
		t.Errorf("labels = %+v", sch.Labels)
	}
	if len(sch.GlobalLabels) != 1 || sch.GlobalLabels[0].Shape != "output" {
		t.Errorf("global labels = %+v", sch.GlobalLabels)
	}
	if len(sch.HierLabels) != 1 || sch.HierLabels[0].Angle != 90 {
		t.Errorf("hierarchical labels = %+v", sch.HierLabels)
	}

	refs := sch.GetAllReferences()
	want := []string{"R1", "R2", "#PWR01", "U1"}
	if strings.Join(refs, ",") != strings.Join(want, ",") {
		t.Errorf("GetAllReferences = %v, want %v", refs, want)
	}

	u1 := sch.GetSymbol("U1")
	if u1 == nil {
		t.Fatal("GetSymbol('U1') returned nil")
	}
	if u1.Unit != 2 || u1.Mirror != "x" || u1.Angle != 90 {
		t.Errorf("U1 = %+v", u1)
	}
	if sch.GetSymbol("R9") != nil {
		t.Error("GetSymbol('R9') should be nil")
	}
}

func TestParseLibSymbolUnits(t *testing.T) {
	sch := loadDivider(t)

	buf := sch.GetLibSymbol("Test:DualBuffer")
	if buf == nil {
		t.Fatal("Test:DualBuffer not found")
	}
	if len(buf.Units) != 4 {
		t.Fatalf("Expected 4 units, got %d", len(buf.Units))
	}
	if u := buf.Units[0]; u.Unit != 0 || u.Style != 1 || len(u.Pins) != 2 {
		t.Errorf("common unit = %+v", u)
	}
	if u := buf.Units[3]; u.Unit != 1 || u.Style != 2 {
		t.Errorf("De Morgan unit = %+v", u)
	}
	nc := buf.Units[1].Pins[2]
	if nc.Type != "no_connect" || !nc.Hide || nc.Number != "3" {
		t.Errorf("no-connect pin = %+v", nc)
	}

	gnd := sch.GetLibSymbol("power:GND")
	if gnd == nil || !gnd.Power {
		t.Errorf("power:GND = %+v", gnd)
	}
	if r := sch.GetLibSymbol("Device:R"); r == nil || r.Power {
		t.Errorf("Device:R = %+v", r)
	} else if len(r.Pins()) != 2 {
		t.Errorf("Device:R pins = %d", len(r.Pins()))
	}
}

func TestUnitNumbers(t *testing.T) {
	tests := []struct {
		name        string
		unit, style int
	}{
		{"R_0_1", 0, 1},
		{"LM358_2_1", 2, 1},
		{"My_Part_3_2", 3, 2},
		{"Plain", 0, 1},
		{"R_a_b", 0, 1},
	}
	for _, tt := range tests {
		u, s := unitNumbers(tt.name)
		if u != tt.unit || s != tt.style {
			t.Errorf("unitNumbers(%q) = %d,%d want %d,%d", tt.name, u, s, tt.unit, tt.style)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"invalid root", `(kicad_pcb (version 20231120))`},
		{"old version", `(kicad_sch (version 20200101))`},
		{"missing version", `(kicad_sch (generator "eeschema"))`},
		{"unbalanced", `(kicad_sch (version 20231120)`},
		{"short wire", `(kicad_sch (version 20231120) (wire (pts (xy 0 0)) (uuid "w")))`},
		{"label without position", `(kicad_sch (version 20231120) (label "X" (uuid "l")))`},
		{"empty", ``},
	}
	for _, tt := range tests {
		if _, err := Parse(strings.NewReader(tt.input)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestParseErrorCarriesLine(t *testing.T) {
	input := "(kicad_sch\n  (version 20231120)\n  (junction (at 1 x))\n)"
	_, err := Parse(strings.NewReader(input))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("expected line 3 in error, got %v", err)
	}
}
