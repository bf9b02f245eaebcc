package schematic

import (
	"github.com/OpenTraceLab/kiwire/pkg/geom"
	"github.com/OpenTraceLab/kiwire/pkg/kicad/sexp/kicadsexp"
)

// Schematic is the subset of a .kicad_sch sheet that carries connectivity:
// placed symbols and their embedded library definitions, wires, junctions,
// no-connect markers, labels and sheet pins.
type Schematic struct {
	Version      int        // File format version
	Generator    string     // Generator info (e.g., "eeschema")
	GeneratorVer string     // Generator version
	UUID         string     // Schematic UUID
	Paper        string     // Paper size (e.g., "A4")
	TitleBlock   TitleBlock // Title block information

	LibSymbols   []LibSymbol   // Embedded library symbols
	Symbols      []Symbol      // Symbol instances on the schematic
	Wires        []Wire        // Wire connections
	Buses        int           // Bus count (buses carry no pin connectivity)
	Junctions    []Junction    // Wire junctions
	NoConnects   []NoConnect   // No-connect markers
	Labels       []Label       // Local labels
	GlobalLabels []GlobalLabel // Global labels
	HierLabels   []HierLabel   // Hierarchical labels
	Sheets       []Sheet       // Hierarchical sheet references

	// root is the parsed document; new records are inserted into it so
	// that Encode writes back everything the model does not cover.
	root *kicadsexp.List
}

// TitleBlock contains schematic title block information
type TitleBlock struct {
	Title    string
	Date     string
	Revision string
	Company  string
}

// Property is a key/value property of a symbol or label.
type Property struct {
	Key   string
	Value string
}

// LibSymbol is a library symbol embedded in the schematic.
type LibSymbol struct {
	Name       string       // Symbol name (e.g., "Device:R")
	Power      bool         // Power symbol: its pins join the net named by Value
	Properties []Property   // Symbol properties
	Units      []SymbolUnit // Nested unit symbols
}

// SymbolUnit is one nested "NAME_UNIT_STYLE" symbol of a library symbol.
// Unit 0 holds pins common to every unit. Style 1 is the normal body
// style, 2 the De Morgan alternate.
type SymbolUnit struct {
	Name  string
	Unit  int
	Style int
	Pins  []Pin
}

// Pin is a library pin. Position is in library space (Y up).
type Pin struct {
	Type     string     // Electrical type (input, output, passive, no_connect, ...)
	Style    string     // Graphic style (line, inverted, clock, ...)
	Position geom.Point // Connection point
	Angle    float64    // Direction toward the body, degrees
	Length   float64
	Name     string
	Number   string
	Hide     bool
}

// Pins returns every pin across all units and styles.
func (l *LibSymbol) Pins() []Pin {
	var out []Pin
	for _, u := range l.Units {
		out = append(out, u.Pins...)
	}
	return out
}

// Symbol is a placed symbol instance.
type Symbol struct {
	LibID      string     // Library identifier (e.g., "Device:R")
	Position   geom.Point // Position on schematic
	Angle      float64    // Rotation angle in degrees
	Mirror     string     // Mirror mode (x, y, or empty)
	Unit       int        // Unit number (for multi-unit symbols)
	UUID       string
	Properties []Property // Instance properties (Reference, Value, etc.)
}

// Property returns the value of the named property.
func (s *Symbol) Property(key string) string {
	for _, p := range s.Properties {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// Reference returns the Reference property (e.g. "R1").
func (s *Symbol) Reference() string {
	return s.Property("Reference")
}

// Wire is a schematic wire.
type Wire struct {
	Points []geom.Point // Wire points (at least 2)
	UUID   string
}

// Junction is a wire junction dot.
type Junction struct {
	Position geom.Point
	Diameter float64
	UUID     string
}

// NoConnect is a no-connect marker.
type NoConnect struct {
	Position geom.Point
	UUID     string
}

// Label is a local net label.
type Label struct {
	Text     string
	Position geom.Point
	Angle    float64
	UUID     string
}

// GlobalLabel is a global net label.
type GlobalLabel struct {
	Text     string
	Shape    string // input, output, bidirectional, tri_state, passive
	Position geom.Point
	Angle    float64
	UUID     string
}

// HierLabel is a hierarchical label connecting to a parent sheet pin.
type HierLabel struct {
	Text     string
	Shape    string
	Position geom.Point
	Angle    float64
	UUID     string
}

// Sheet is a hierarchical sheet reference.
type Sheet struct {
	Name     string
	FileName string
	Position geom.Point
	UUID     string
	Pins     []SheetPin
}

// SheetPin is a hierarchical pin on a sheet's border.
type SheetPin struct {
	Name     string
	Shape    string
	Position geom.Point
	UUID     string
}

// Helper methods

// GetSymbol finds a symbol by reference designator
func (s *Schematic) GetSymbol(ref string) *Symbol {
	for i := range s.Symbols {
		if s.Symbols[i].Reference() == ref {
			return &s.Symbols[i]
		}
	}
	return nil
}

// GetLibSymbol finds an embedded library symbol by name.
func (s *Schematic) GetLibSymbol(name string) *LibSymbol {
	for i := range s.LibSymbols {
		if s.LibSymbols[i].Name == name {
			return &s.LibSymbols[i]
		}
	}
	return nil
}

// GetAllReferences returns all component references in file order.
// Multi-unit symbols appear once.
func (s *Schematic) GetAllReferences() []string {
	seen := make(map[string]bool)
	var refs []string
	for i := range s.Symbols {
		ref := s.Symbols[i].Reference()
		if ref != "" && !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

// GetLabels returns all unique label texts
func (s *Schematic) GetLabels() []string {
	seen := make(map[string]bool)
	var labels []string
	add := func(text string) {
		if !seen[text] {
			seen[text] = true
			labels = append(labels, text)
		}
	}
	for _, l := range s.Labels {
		add(l.Text)
	}
	for _, l := range s.GlobalLabels {
		add(l.Text)
	}
	for _, l := range s.HierLabels {
		add(l.Text)
	}
	return labels
}
