// Package schematic reads KiCad schematic sheets (.kicad_sch) into the model
// the connectivity engine consumes, serves the embedded symbol library and
// appends new wire and junction records.
package schematic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/viant/afs"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
	"github.com/OpenTraceLab/kiwire/pkg/kicad/sexp"
	"github.com/OpenTraceLab/kiwire/pkg/kicad/sexp/kicadsexp"
)

// Minimum supported KiCad version for schematics (6.0 = 20211014)
const MinSupportedVersion = 20211014

// Load reads and parses a schematic from a local path or any afs URL.
func Load(ctx context.Context, URL string) (*Schematic, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", URL, err)
	}
	sch, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", URL, err)
	}
	return sch, nil
}

// Parse reads and parses a KiCad schematic from an io.Reader
func Parse(r io.Reader) (*Schematic, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}

	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty file or no valid s-expressions found")
	}

	// The root should be a (kicad_sch ...) expression
	root, ok := sexps[0].(*kicadsexp.List)
	if !ok {
		return nil, fmt.Errorf("not a KiCad schematic file: root is an atom")
	}
	rootName, err := sexp.GetNodeName(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get root node name: %w", err)
	}
	if rootName != "kicad_sch" {
		return nil, fmt.Errorf("not a KiCad schematic file: expected 'kicad_sch', got '%s'", rootName)
	}

	sch := &Schematic{root: root}

	if err := parseHeader(root, sch); err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	sch.UUID = sexp.GetUUID(root)
	sch.Paper, _ = sexp.GetChildString(root, "paper")

	if titleBlockNode, found := sexp.FindNode(root, "title_block"); found {
		sch.TitleBlock = parseTitleBlock(titleBlockNode)
	}

	if libSymbolsNode, found := sexp.FindNode(root, "lib_symbols"); found {
		if sch.LibSymbols, err = parseLibSymbols(libSymbolsNode); err != nil {
			return nil, err
		}
	}

	if sch.Symbols, err = parseSymbols(root); err != nil {
		return nil, err
	}
	if sch.Wires, err = parseWires(root); err != nil {
		return nil, err
	}
	sch.Buses = len(sexp.FindAllNodes(root, "bus"))
	if sch.Junctions, err = parseJunctions(root); err != nil {
		return nil, err
	}
	if sch.NoConnects, err = parseNoConnects(root); err != nil {
		return nil, err
	}
	if sch.Labels, err = parseLabels(root); err != nil {
		return nil, err
	}
	if sch.GlobalLabels, err = parseGlobalLabels(root); err != nil {
		return nil, err
	}
	if sch.HierLabels, err = parseHierLabels(root); err != nil {
		return nil, err
	}
	if sch.Sheets, err = parseSheets(root); err != nil {
		return nil, err
	}

	return sch, nil
}

// parseHeader extracts version and generator information
func parseHeader(root kicadsexp.Sexp, sch *Schematic) error {
	versionNode, found := sexp.FindNode(root, "version")
	if !found {
		return fmt.Errorf("missing required 'version' field")
	}

	ver, err := sexp.GetInt(versionNode, 1)
	if err != nil {
		return fmt.Errorf("failed to parse version: %w", err)
	}
	if ver < MinSupportedVersion {
		return fmt.Errorf("unsupported KiCad version: %d (minimum required: %d / KiCad 6.0)", ver, MinSupportedVersion)
	}
	sch.Version = ver

	sch.Generator, _ = sexp.GetChildString(root, "generator")
	sch.GeneratorVer, _ = sexp.GetChildString(root, "generator_version")
	return nil
}

// parseTitleBlock extracts title block information
func parseTitleBlock(node kicadsexp.Sexp) TitleBlock {
	tb := TitleBlock{}
	tb.Title, _ = sexp.GetChildString(node, "title")
	tb.Date, _ = sexp.GetChildString(node, "date")
	tb.Revision, _ = sexp.GetChildString(node, "rev")
	tb.Company, _ = sexp.GetChildString(node, "company")
	return tb
}

func parseProperties(node kicadsexp.Sexp) []Property {
	var props []Property
	for _, pn := range sexp.FindAllNodes(node, "property") {
		key, err := sexp.GetString(pn, 1)
		if err != nil {
			continue
		}
		value, _ := sexp.GetString(pn, 2)
		props = append(props, Property{Key: key, Value: value})
	}
	return props
}

// parseLibSymbols parses embedded library symbols
func parseLibSymbols(node kicadsexp.Sexp) ([]LibSymbol, error) {
	symbolNodes := sexp.FindAllNodes(node, "symbol")
	symbols := make([]LibSymbol, 0, len(symbolNodes))

	for _, symNode := range symbolNodes {
		sym, err := parseLibSymbol(symNode)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}

	return symbols, nil
}

// parseLibSymbol parses a single library symbol definition
func parseLibSymbol(node kicadsexp.Sexp) (LibSymbol, error) {
	sym := LibSymbol{}
	sym.Name, _ = sexp.GetString(node, 1)
	sym.Properties = parseProperties(node)
	_, sym.Power = sexp.FindNode(node, "power")

	// Pins live in the nested unit symbols. Older files may also carry
	// pins directly on the parent; treat those as common to all units.
	if direct := sexp.FindAllNodes(node, "pin"); len(direct) > 0 {
		unit := SymbolUnit{Name: sym.Name, Style: 1}
		for _, pn := range direct {
			pin, err := parsePin(pn)
			if err != nil {
				return sym, fmt.Errorf("symbol %q: %w", sym.Name, err)
			}
			unit.Pins = append(unit.Pins, pin)
		}
		sym.Units = append(sym.Units, unit)
	}

	for _, unitNode := range sexp.FindAllNodes(node, "symbol") {
		unit, err := parseSymbolUnit(unitNode)
		if err != nil {
			return sym, fmt.Errorf("symbol %q: %w", sym.Name, err)
		}
		sym.Units = append(sym.Units, unit)
	}

	return sym, nil
}

// parseSymbolUnit parses a nested symbol unit named NAME_UNIT_STYLE.
func parseSymbolUnit(node kicadsexp.Sexp) (SymbolUnit, error) {
	unit := SymbolUnit{Style: 1}
	unit.Name, _ = sexp.GetString(node, 1)
	unit.Unit, unit.Style = unitNumbers(unit.Name)

	for _, pn := range sexp.FindAllNodes(node, "pin") {
		pin, err := parsePin(pn)
		if err != nil {
			return unit, err
		}
		unit.Pins = append(unit.Pins, pin)
	}

	return unit, nil
}

// unitNumbers splits "R_0_1" into unit 0 and style 1. Names without the
// suffix are treated as common pins of the normal style.
func unitNumbers(name string) (unit, style int) {
	parts := strings.Split(name, "_")
	if len(parts) < 3 {
		return 0, 1
	}
	u, err1 := strconv.Atoi(parts[len(parts)-2])
	s, err2 := strconv.Atoi(parts[len(parts)-1])
	if err1 != nil || err2 != nil {
		return 0, 1
	}
	return u, s
}

// parsePin parses a pin definition
func parsePin(node kicadsexp.Sexp) (Pin, error) {
	pin := Pin{}
	pin.Type, _ = sexp.GetString(node, 1)
	pin.Style, _ = sexp.GetString(node, 2)

	var err error
	if pin.Position, pin.Angle, err = sexp.GetChildAt(node); err != nil {
		return pin, err
	}

	if lenNode, found := sexp.FindNode(node, "length"); found {
		pin.Length, _ = sexp.GetFloat(lenNode, 1)
	}
	pin.Name, _ = sexp.GetChildString(node, "name")
	pin.Number, _ = sexp.GetChildString(node, "number")

	// KiCad 6-8 write a bare "hide"; KiCad 9 writes (hide yes).
	pin.Hide = sexp.HasSymbol(node, "hide")
	if v, ok := sexp.GetChildString(node, "hide"); ok {
		pin.Hide = v == "yes"
	}

	return pin, nil
}

// parseSymbols parses symbol instances
func parseSymbols(root kicadsexp.Sexp) ([]Symbol, error) {
	symbolNodes := sexp.FindAllNodes(root, "symbol")
	symbols := make([]Symbol, 0, len(symbolNodes))

	for _, symNode := range symbolNodes {
		sym, err := parseSymbol(symNode)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}

	return symbols, nil
}

// parseSymbol parses a single symbol instance
func parseSymbol(node kicadsexp.Sexp) (Symbol, error) {
	sym := Symbol{Unit: 1}
	sym.LibID, _ = sexp.GetChildString(node, "lib_id")

	var err error
	if sym.Position, sym.Angle, err = sexp.GetChildAt(node); err != nil {
		return sym, fmt.Errorf("symbol %q: %w", sym.LibID, err)
	}

	sym.Mirror, _ = sexp.GetChildString(node, "mirror")
	if unitNode, found := sexp.FindNode(node, "unit"); found {
		if sym.Unit, err = sexp.GetInt(unitNode, 1); err != nil {
			return sym, err
		}
	}
	sym.UUID = sexp.GetUUID(node)
	sym.Properties = parseProperties(node)

	return sym, nil
}

// parseWires parses wire connections
func parseWires(root kicadsexp.Sexp) ([]Wire, error) {
	wireNodes := sexp.FindAllNodes(root, "wire")
	wires := make([]Wire, 0, len(wireNodes))

	for _, wn := range wireNodes {
		wire := Wire{UUID: sexp.GetUUID(wn)}

		if ptsNode, found := sexp.FindNode(wn, "pts"); found {
			points, err := sexp.GetPoints(ptsNode)
			if err != nil {
				return nil, fmt.Errorf("wire %s: %w", wire.UUID, err)
			}
			wire.Points = points
		}
		if len(wire.Points) < 2 {
			return nil, fmt.Errorf("wire %s: needs at least 2 points, got %d", wire.UUID, len(wire.Points))
		}

		wires = append(wires, wire)
	}

	return wires, nil
}

// parseJunctions parses junction points
func parseJunctions(root kicadsexp.Sexp) ([]Junction, error) {
	nodes := sexp.FindAllNodes(root, "junction")
	junctions := make([]Junction, 0, len(nodes))

	for _, jn := range nodes {
		j := Junction{UUID: sexp.GetUUID(jn)}
		var err error
		if j.Position, _, err = sexp.GetChildAt(jn); err != nil {
			return nil, fmt.Errorf("junction: %w", err)
		}
		if dNode, found := sexp.FindNode(jn, "diameter"); found {
			j.Diameter, _ = sexp.GetFloat(dNode, 1)
		}
		junctions = append(junctions, j)
	}

	return junctions, nil
}

// parseNoConnects parses no-connect markers
func parseNoConnects(root kicadsexp.Sexp) ([]NoConnect, error) {
	nodes := sexp.FindAllNodes(root, "no_connect")
	markers := make([]NoConnect, 0, len(nodes))

	for _, nn := range nodes {
		nc := NoConnect{UUID: sexp.GetUUID(nn)}
		var err error
		if nc.Position, _, err = sexp.GetChildAt(nn); err != nil {
			return nil, fmt.Errorf("no_connect: %w", err)
		}
		markers = append(markers, nc)
	}

	return markers, nil
}

// labelFields holds what the three label kinds share.
type labelFields struct {
	text     string
	shape    string
	position geom.Point
	angle    float64
	uuid     string
}

func parseLabelNodes(root kicadsexp.Sexp, key string) ([]labelFields, error) {
	nodes := sexp.FindAllNodes(root, key)
	out := make([]labelFields, 0, len(nodes))
	for _, ln := range nodes {
		lf := labelFields{uuid: sexp.GetUUID(ln)}
		lf.text, _ = sexp.GetString(ln, 1)
		lf.shape, _ = sexp.GetChildString(ln, "shape")
		var err error
		if lf.position, lf.angle, err = sexp.GetChildAt(ln); err != nil {
			return nil, fmt.Errorf("%s %q: %w", key, lf.text, err)
		}
		out = append(out, lf)
	}
	return out, nil
}

// parseLabels parses local labels
func parseLabels(root kicadsexp.Sexp) ([]Label, error) {
	fields, err := parseLabelNodes(root, "label")
	if err != nil {
		return nil, err
	}
	labels := make([]Label, len(fields))
	for i, f := range fields {
		labels[i] = Label{Text: f.text, Position: f.position, Angle: f.angle, UUID: f.uuid}
	}
	return labels, nil
}

// parseGlobalLabels parses global labels
func parseGlobalLabels(root kicadsexp.Sexp) ([]GlobalLabel, error) {
	fields, err := parseLabelNodes(root, "global_label")
	if err != nil {
		return nil, err
	}
	labels := make([]GlobalLabel, len(fields))
	for i, f := range fields {
		labels[i] = GlobalLabel{Text: f.text, Shape: f.shape, Position: f.position, Angle: f.angle, UUID: f.uuid}
	}
	return labels, nil
}

// parseHierLabels parses hierarchical labels
func parseHierLabels(root kicadsexp.Sexp) ([]HierLabel, error) {
	fields, err := parseLabelNodes(root, "hierarchical_label")
	if err != nil {
		return nil, err
	}
	labels := make([]HierLabel, len(fields))
	for i, f := range fields {
		labels[i] = HierLabel{Text: f.text, Shape: f.shape, Position: f.position, Angle: f.angle, UUID: f.uuid}
	}
	return labels, nil
}

// parseSheets parses hierarchical sheet references
func parseSheets(root kicadsexp.Sexp) ([]Sheet, error) {
	sheetNodes := sexp.FindAllNodes(root, "sheet")
	sheets := make([]Sheet, 0, len(sheetNodes))

	for _, sn := range sheetNodes {
		sheet := Sheet{UUID: sexp.GetUUID(sn)}
		sheet.Position, _, _ = sexp.GetChildAt(sn)

		// KiCad 6 uses "Sheet name"/"Sheet file"; KiCad 7+ "Sheetname"/"Sheetfile".
		for _, p := range parseProperties(sn) {
			switch p.Key {
			case "Sheet name", "Sheetname":
				sheet.Name = p.Value
			case "Sheet file", "Sheetfile":
				sheet.FileName = p.Value
			}
		}

		for _, pn := range sexp.FindAllNodes(sn, "pin") {
			pin := SheetPin{UUID: sexp.GetUUID(pn)}
			pin.Name, _ = sexp.GetString(pn, 1)
			pin.Shape, _ = sexp.GetString(pn, 2)
			var err error
			if pin.Position, _, err = sexp.GetChildAt(pn); err != nil {
				return nil, fmt.Errorf("sheet %q pin %q: %w", sheet.Name, pin.Name, err)
			}
			sheet.Pins = append(sheet.Pins, pin)
		}

		sheets = append(sheets, sheet)
	}

	return sheets, nil
}
