package schematic

import (
	"errors"
	"fmt"
	"sort"

	"github.com/OpenTraceLab/kiwire/pkg/pins"
)

// ErrSymbolNotFound is returned when a lib_id has no embedded definition.
var ErrSymbolNotFound = errors.New("library symbol not found")

// Library serves pin definitions from the lib_symbols block embedded in a
// schematic. Converted definitions are memoised per (lib_id, unit).
type Library struct {
	symbols map[string]*LibSymbol
	cache   map[libKey][]pins.Definition
}

type libKey struct {
	libID string
	unit  int
}

// NewLibrary indexes the schematic's embedded symbols.
func NewLibrary(sch *Schematic) *Library {
	lib := &Library{
		symbols: make(map[string]*LibSymbol, len(sch.LibSymbols)),
		cache:   make(map[libKey][]pins.Definition),
	}
	for i := range sch.LibSymbols {
		lib.symbols[sch.LibSymbols[i].Name] = &sch.LibSymbols[i]
	}
	return lib
}

// Names lists the embedded lib_ids, sorted.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.symbols))
	for name := range l.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Symbol returns the embedded definition for libID.
func (l *Library) Symbol(libID string) (*LibSymbol, bool) {
	sym, ok := l.symbols[libID]
	return sym, ok
}

// Lookup returns the pin definitions of one unit of libID: pins common to
// all units (unit 0) plus the pins of the given unit, normal body style
// only. A unit of 0 or less returns every unit's pins.
func (l *Library) Lookup(libID string, unit int) ([]pins.Definition, error) {
	key := libKey{libID: libID, unit: unit}
	if defs, ok := l.cache[key]; ok {
		return defs, nil
	}

	sym, ok := l.symbols[libID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, libID)
	}

	var defs []pins.Definition
	for _, u := range sym.Units {
		if unit > 0 && u.Unit != 0 && u.Unit != unit {
			continue
		}
		if u.Style > 1 {
			continue
		}
		for _, p := range u.Pins {
			o, err := pins.OrientationFromAngle(p.Angle)
			if err != nil {
				return nil, fmt.Errorf("%s pin %s: %w", libID, p.Number, err)
			}
			defs = append(defs, pins.Definition{
				Number:         p.Number,
				Name:           p.Name,
				ElectricalType: p.Type,
				Position:       p.Position,
				Orientation:    o,
			})
		}
	}

	l.cache[key] = defs
	return defs, nil
}

// Placement converts the instance's at/mirror fields.
func (s *Symbol) Placement() (pins.Placement, error) {
	rot, err := pins.RotationFromDegrees(s.Angle)
	if err != nil {
		return pins.Placement{}, err
	}
	mirror, err := pins.ParseMirror(s.Mirror)
	if err != nil {
		return pins.Placement{}, err
	}
	return pins.Placement{
		LibID:    s.LibID,
		Position: s.Position,
		Rotation: rot,
		Mirror:   mirror,
	}, nil
}
