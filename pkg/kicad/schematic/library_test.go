package schematic

import (
	"errors"
	"testing"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
	"github.com/OpenTraceLab/kiwire/pkg/pins"
)

func TestLibraryLookup(t *testing.T) {
	lib := NewLibrary(loadDivider(t))

	defs, err := lib.Lookup("Device:R", 1)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("Device:R: %d pins", len(defs))
	}
	if defs[0].Number != "1" || defs[0].Position != geom.Pt(0, 3.81) || defs[0].Orientation != pins.Down {
		t.Errorf("pin 1 = %+v", defs[0])
	}
	if defs[1].Orientation != pins.Up {
		t.Errorf("pin 2 orientation = %v", defs[1].Orientation)
	}

	unit2, err := lib.Lookup("Test:DualBuffer", 2)
	if err != nil {
		t.Fatalf("Lookup unit 2: %v", err)
	}
	var numbers []string
	for _, d := range unit2 {
		numbers = append(numbers, d.Number)
	}
	if got := len(numbers); got != 4 {
		t.Errorf("unit 2 pins = %v, want common 8,4 plus 5,6", numbers)
	}

	unit1, _ := lib.Lookup("Test:DualBuffer", 1)
	if len(unit1) != 5 {
		t.Errorf("unit 1 pins = %d, want 5 (De Morgan style excluded)", len(unit1))
	}
	all, _ := lib.Lookup("Test:DualBuffer", 0)
	if len(all) != 7 {
		t.Errorf("all units = %d pins, want 7", len(all))
	}

	_, err = lib.Lookup("Device:C", 1)
	if !errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}

	if names := lib.Names(); len(names) != 3 || names[0] != "Device:R" {
		t.Errorf("Names = %v", names)
	}
}

func TestSymbolPlacement(t *testing.T) {
	sch := loadDivider(t)
	pl, err := sch.GetSymbol("U1").Placement()
	if err != nil {
		t.Fatalf("Placement: %v", err)
	}
	if pl.Rotation != 90 || pl.Mirror != pins.MirrorX || pl.Position != geom.Pt(165.1, 127) {
		t.Errorf("Placement = %+v", pl)
	}

	bad := Symbol{Angle: 45}
	if _, err := bad.Placement(); !errors.Is(err, pins.ErrInvalidRotation) {
		t.Errorf("expected ErrInvalidRotation, got %v", err)
	}
}

func TestResolveFromLibrary(t *testing.T) {
	sch := loadDivider(t)
	lib := NewLibrary(sch)
	u1 := sch.GetSymbol("U1")
	defs, err := lib.Lookup(u1.LibID, u1.Unit)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	pl, _ := u1.Placement()
	resolved, err := pins.NewResolver(nil).ResolvePins("U1", pl, defs)
	if err != nil {
		t.Fatalf("ResolvePins: %v", err)
	}
	p5, err := pins.Find("U1", resolved, "5")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !p5.Position.Near(sch.NoConnects[0].Position, geom.DefaultTolerance) {
		t.Errorf("U1.5 at %v, no-connect marker at %v", p5.Position, sch.NoConnects[0].Position)
	}
}
