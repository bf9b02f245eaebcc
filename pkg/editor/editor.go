// Package editor binds a parsed schematic and its symbol library to the
// routing, junction and connectivity engine. It looks up pins by name,
// connects endpoints with new wires and keeps the connectivity graph in
// step with every edit.
//
// An Editor is not safe for concurrent use.
package editor

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/kiwire/pkg/config"
	"github.com/OpenTraceLab/kiwire/pkg/kicad/schematic"
	"github.com/OpenTraceLab/kiwire/pkg/netgraph"
	"github.com/OpenTraceLab/kiwire/pkg/pins"
	"github.com/OpenTraceLab/kiwire/pkg/route"
)

// Library supplies pin definitions for one unit of a library symbol.
type Library interface {
	Lookup(libID string, unit int) ([]pins.Definition, error)
}

// Editor edits one schematic sheet.
type Editor struct {
	sch      *schematic.Schematic
	lib      Library
	cfg      *config.Config
	log      *slog.Logger
	resolver *pins.Resolver
	router   *route.Router
	graph    *netgraph.Graph

	// components maps a component key to its resolved pins across all
	// units. The key is the reference unless componentKey says otherwise.
	components map[string][]pins.Resolved
	symbols    map[string]*schematic.Symbol
	anchors    []netgraph.PinAnchor
	refs       []string
}

// placement tracks what has been placed under one reference.
type placement struct {
	libID string
	units map[int]bool
}

// New resolves every placed symbol and builds the connectivity graph. A nil
// cfg uses config.DefaultConfig and a nil logger discards.
func New(sch *schematic.Schematic, lib Library, cfg *config.Config, logger *slog.Logger) (*Editor, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	router, err := cfg.Router(logger)
	if err != nil {
		return nil, err
	}

	e := &Editor{
		sch:      sch,
		lib:      lib,
		cfg:      cfg,
		log:      logger,
		resolver: pins.NewResolver(logger),
		router:   router,
	}
	if err := e.Reload(); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload re-resolves every component and rebuilds the graph from the
// schematic. Call it after changing placements or the library.
func (e *Editor) Reload() error {
	e.components = make(map[string][]pins.Resolved)
	e.symbols = make(map[string]*schematic.Symbol)
	e.anchors = nil
	e.refs = e.refs[:0]
	e.resolver.Cache.Reset()

	placed := make(map[string]*placement)
	var labels []netgraph.Label
	for i := range e.sch.Symbols {
		sym := &e.sch.Symbols[i]
		ref := sym.Reference()
		if ref == "" {
			continue
		}
		key := componentKey(ref, sym, i, placed)
		resolved, err := e.resolveSymbol(key, sym)
		if err != nil {
			return err
		}
		if _, seen := e.components[key]; !seen {
			e.refs = append(e.refs, key)
			e.symbols[key] = sym
		}
		var extra []netgraph.PinAnchor
		e.components[key], extra = mergePins(e.components[key], resolved)
		e.anchors = append(e.anchors, extra...)
		labels = append(labels, powerLabels(e.sch, sym, resolved)...)
	}
	sort.Strings(e.refs)

	snap := e.snapshot()
	snap.Labels = append(snap.Labels, labels...)
	g, err := netgraph.Build(snap, e.cfg.GraphOptions(e.log))
	if err != nil {
		return err
	}
	e.graph = g
	return nil
}

// componentKey names the component a placed symbol belongs to. Units of
// one part share their reference. Unannotated references ("R?") and
// references reused by a different part or an already placed unit get a
// key of their own: "REF@" plus the first eight characters of the symbol
// UUID, or the whole UUID when that is taken.
func componentKey(ref string, sym *schematic.Symbol, index int, placed map[string]*placement) string {
	if !strings.HasSuffix(ref, "?") {
		p, ok := placed[ref]
		if !ok {
			placed[ref] = &placement{libID: sym.LibID, units: map[int]bool{sym.Unit: true}}
			return ref
		}
		if p.libID == sym.LibID && !p.units[sym.Unit] {
			p.units[sym.Unit] = true
			return ref
		}
	}

	candidates := []string{sym.UUID, strconv.Itoa(index)}
	if len(sym.UUID) > 8 {
		candidates = append([]string{sym.UUID[:8]}, candidates...)
	}
	for _, id := range candidates {
		key := ref + "@" + id
		if id == "" || placed[key] != nil {
			continue
		}
		placed[key] = &placement{libID: sym.LibID, units: map[int]bool{sym.Unit: true}}
		return key
	}
	return ref + "@" + strconv.Itoa(index) + "-" + sym.UUID
}

func (e *Editor) resolveSymbol(ref string, sym *schematic.Symbol) ([]pins.Resolved, error) {
	defs, err := e.lib.Lookup(sym.LibID, sym.Unit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	pl, err := sym.Placement()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	return e.resolver.ResolvePins(ref, pl, defs)
}

// mergePins adds the pins of another unit. Pins common to all units show
// up once per placed unit: the first placement keeps the pin and the
// later positions come back as anchors of it.
func mergePins(have, add []pins.Resolved) ([]pins.Resolved, []netgraph.PinAnchor) {
	var extra []netgraph.PinAnchor
	for _, p := range add {
		dup := false
		for _, h := range have {
			if h.Number == p.Number {
				dup = true
				break
			}
		}
		if dup {
			extra = append(extra, netgraph.PinAnchor{Key: p.Key(), Position: p.Position})
			continue
		}
		have = append(have, p)
	}
	return have, extra
}

// powerLabels turns the pins of a power symbol into global labels named
// after its Value, so that every GND symbol lands on one net.
func powerLabels(sch *schematic.Schematic, sym *schematic.Symbol, resolved []pins.Resolved) []netgraph.Label {
	lib := sch.GetLibSymbol(sym.LibID)
	if lib == nil || !lib.Power {
		return nil
	}
	name := sym.Property("Value")
	if name == "" {
		return nil
	}
	out := make([]netgraph.Label, len(resolved))
	for i, p := range resolved {
		out[i] = netgraph.Label{
			ID:       sym.UUID + "/" + p.Number,
			Text:     name,
			Kind:     netgraph.LabelGlobal,
			Position: p.Position,
		}
	}
	return out
}

// snapshot collects the sheet's position-bearing entities.
func (e *Editor) snapshot() netgraph.Snapshot {
	var snap netgraph.Snapshot
	for _, ref := range e.refs {
		snap.Pins = append(snap.Pins, e.components[ref]...)
	}
	snap.PinAnchors = append(snap.PinAnchors, e.anchors...)
	for _, w := range e.sch.Wires {
		snap.Wires = append(snap.Wires, netgraph.Wire{ID: w.UUID, Points: w.Points})
	}
	for _, j := range e.sch.Junctions {
		snap.Junctions = append(snap.Junctions, netgraph.Junction{ID: j.UUID, Position: j.Position})
	}
	for _, l := range e.sch.Labels {
		snap.Labels = append(snap.Labels, netgraph.Label{ID: l.UUID, Text: l.Text, Kind: netgraph.LabelLocal, Position: l.Position})
	}
	for _, l := range e.sch.GlobalLabels {
		snap.Labels = append(snap.Labels, netgraph.Label{ID: l.UUID, Text: l.Text, Kind: netgraph.LabelGlobal, Position: l.Position})
	}
	for _, l := range e.sch.HierLabels {
		snap.Labels = append(snap.Labels, netgraph.Label{ID: l.UUID, Text: l.Text, Kind: netgraph.LabelHierarchical, Position: l.Position})
	}
	// Sheet pins connect wires on this sheet to the child sheet; locally
	// they behave like hierarchical labels.
	for _, s := range e.sch.Sheets {
		for _, p := range s.Pins {
			snap.Labels = append(snap.Labels, netgraph.Label{ID: p.UUID, Text: p.Name, Kind: netgraph.LabelHierarchical, Position: p.Position})
		}
	}
	for _, nc := range e.sch.NoConnects {
		snap.NoConnects = append(snap.NoConnects, nc.Position)
	}
	return snap
}

// Schematic returns the edited sheet.
func (e *Editor) Schematic() *schematic.Schematic {
	return e.sch
}

// Graph returns the connectivity graph. It reflects every Connect made
// through the editor.
func (e *Editor) Graph() *netgraph.Graph {
	return e.graph
}

// Components lists the component keys on the sheet, sorted. A key is the
// reference, or "REF@id" for unannotated and duplicated references.
func (e *Editor) Components() []string {
	return append([]string(nil), e.refs...)
}

// Symbol returns the first placed symbol of a component.
func (e *Editor) Symbol(ref string) (*schematic.Symbol, error) {
	sym, ok := e.symbols[ref]
	if !ok {
		return nil, &ComponentNotFoundError{Ref: ref, Available: e.Components()}
	}
	return sym, nil
}

// Pins returns the resolved pins of a component.
func (e *Editor) Pins(ref string) ([]pins.Resolved, error) {
	resolved, ok := e.components[ref]
	if !ok {
		return nil, &ComponentNotFoundError{Ref: ref, Available: e.Components()}
	}
	return resolved, nil
}

// Pin finds a pin by number, then by name. A name shared by several pins
// (e.g. GND on a regulator) is an *AmbiguousPinError.
func (e *Editor) Pin(ref, pin string) (pins.Resolved, error) {
	resolved, err := e.Pins(ref)
	if err != nil {
		return pins.Resolved{}, err
	}
	for _, p := range resolved {
		if p.Number == pin {
			return p, nil
		}
	}
	var matches []pins.Resolved
	for _, p := range resolved {
		if p.Name != "" && p.Name == pin {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return pins.Resolved{}, &pins.PinNotFoundError{Component: ref, Pin: pin, Available: pins.Available(resolved)}
	case 1:
		return matches[0], nil
	}
	keys := make([]pins.Key, len(matches))
	for i, p := range matches {
		keys[i] = p.Key()
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Number < keys[j].Number })
	return pins.Resolved{}, &AmbiguousPinError{Component: ref, Pin: pin, Matches: keys}
}

// SameNet reports whether two pins, named "REF.PIN", are connected.
func (e *Editor) SameNet(a, b string) (bool, error) {
	pa, err := e.pinByRef(a)
	if err != nil {
		return false, err
	}
	pb, err := e.pinByRef(b)
	if err != nil {
		return false, err
	}
	return e.graph.SameNet(pa.Key(), pb.Key())
}

// Validate runs the connectivity checks over the current sheet.
func (e *Editor) Validate() netgraph.Report {
	return e.graph.Validate()
}

// Nets lists the sheet's nets.
func (e *Editor) Nets() []netgraph.Net {
	return e.graph.Nets()
}

// Tolerance is the coincidence distance in use.
func (e *Editor) Tolerance() float64 {
	return e.cfg.Tolerance
}
