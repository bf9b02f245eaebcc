// Package netgraph groups pins, wires, junctions and labels into nets.
//
// A Graph is a derived index over a sheet snapshot. It is either built in
// one go with Build or grown with the Add methods after each edit; it never
// observes the sheet on its own. Entities only ever merge, so removing or
// moving anything requires Rebuild. A Graph is not safe for concurrent use.
package netgraph

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
	"github.com/OpenTraceLab/kiwire/pkg/pins"
)

// Graph is the connectivity index of one sheet.
type Graph struct {
	opts Options
	log  *slog.Logger

	uf    unionFind
	nodes []node

	pins      []pins.Resolved
	pinNodes  map[pins.Key]int
	pinExtra  map[int][]geom.Point // pin index -> further positions
	wires     []Wire
	junctions []Junction
	labels    []Label

	noConnects *geom.PointIndex

	// point anchors: pin, junction and label positions plus wire vertices
	anchors    *geom.PointIndex
	anchorNode []int
	// wire segments, owner node per segment id
	segments *geom.SegmentIndex
	segNode  []int

	byName map[string]int

	dirty bool
	nets  []Net
	netOf map[int]NetID
}

// New returns an empty graph.
func New(opts Options) (*Graph, error) {
	if err := geom.CheckTolerance(opts.Tolerance); err != nil {
		return nil, err
	}
	if !(opts.SegmentCell > 0) {
		opts.SegmentCell = geom.GridStandard
	}
	g := &Graph{opts: opts, log: opts.Logger}
	if g.log == nil {
		g.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g.reset()
	return g, nil
}

// Build indexes a whole snapshot.
func Build(snap Snapshot, opts Options) (*Graph, error) {
	g, err := New(opts)
	if err != nil {
		return nil, err
	}
	if err := g.load(snap); err != nil {
		return nil, err
	}
	return g, nil
}

// Rebuild discards the current index and builds it again from snap.
func (g *Graph) Rebuild(snap Snapshot) error {
	g.reset()
	return g.load(snap)
}

func (g *Graph) reset() {
	g.uf = unionFind{}
	g.nodes = nil
	g.pins = nil
	g.pinNodes = make(map[pins.Key]int)
	g.pinExtra = make(map[int][]geom.Point)
	g.wires = nil
	g.junctions = nil
	g.labels = nil
	g.noConnects = geom.NewPointIndex(g.opts.SegmentCell)
	g.anchors = geom.NewPointIndex(g.opts.SegmentCell)
	g.anchorNode = nil
	g.segments = geom.NewSegmentIndex(g.opts.SegmentCell, g.opts.Tolerance)
	g.segNode = nil
	g.byName = make(map[string]int)
	g.dirty = true
}

func (g *Graph) load(snap Snapshot) error {
	for _, p := range snap.Pins {
		if err := g.AddPin(p); err != nil {
			return err
		}
	}
	for _, a := range snap.PinAnchors {
		if err := g.AddPinAnchor(a); err != nil {
			return err
		}
	}
	for _, w := range snap.Wires {
		g.AddWire(w)
	}
	for _, j := range snap.Junctions {
		g.AddJunction(j)
	}
	for _, l := range snap.Labels {
		g.AddLabel(l)
	}
	for _, p := range snap.NoConnects {
		g.AddNoConnect(p)
	}
	g.log.Debug("graph built",
		slog.Int("pins", len(g.pins)),
		slog.Int("wires", len(g.wires)),
		slog.Int("junctions", len(g.junctions)),
		slog.Int("labels", len(g.labels)))
	return nil
}

// Tolerance returns the distance within which positions coincide.
func (g *Graph) Tolerance() float64 {
	return g.opts.Tolerance
}

func (g *Graph) newNode(kind Kind, index int) int {
	id := g.uf.add()
	g.nodes = append(g.nodes, node{kind: kind, index: index})
	g.dirty = true
	return id
}

// attach joins n with every anchor and wire segment at p and records p as
// an anchor of n.
func (g *Graph) attach(n int, p geom.Point) {
	tol := g.opts.Tolerance
	for _, id := range g.anchors.Near(p, tol) {
		g.uf.union(n, g.anchorNode[id])
	}
	for _, id := range g.segments.At(p, tol) {
		g.uf.union(n, g.segNode[id])
	}
	g.anchors.Insert(p)
	g.anchorNode = append(g.anchorNode, n)
}

// AddPin adds a resolved pin. Pins are keyed by component and number; a
// second pin with the same key is rejected.
func (g *Graph) AddPin(p pins.Resolved) error {
	key := p.Key()
	if _, ok := g.pinNodes[key]; ok {
		return fmt.Errorf("netgraph: duplicate pin %s", key)
	}
	g.pins = append(g.pins, p)
	n := g.newNode(KindPin, len(g.pins)-1)
	g.pinNodes[key] = n
	g.attach(n, p.Position)
	return nil
}

// AddPinAnchor places an existing pin at one more position. Anything at
// that position joins the pin's net.
func (g *Graph) AddPinAnchor(a PinAnchor) error {
	n, err := g.pinNode(a.Key)
	if err != nil {
		return err
	}
	i := g.nodes[n].index
	g.pinExtra[i] = append(g.pinExtra[i], a.Position)
	g.attach(n, a.Position)
	return nil
}

// positions returns every position of pin i, its own first.
func (g *Graph) positions(i int) []geom.Point {
	return append([]geom.Point{g.pins[i].Position}, g.pinExtra[i]...)
}

// AddWire adds a wire. Its vertices join anything within tolerance and any
// other wire passing through them; its segments join every anchor they
// pass over. Two wires crossing mid-segment stay separate until a junction
// is added at the crossing.
func (g *Graph) AddWire(w Wire) {
	g.wires = append(g.wires, w)
	n := g.newNode(KindWire, len(g.wires)-1)
	for _, p := range w.Points {
		g.attach(n, p)
	}
	for _, s := range geom.Segments(w.Points) {
		for _, id := range g.anchors.Along(s, g.opts.Tolerance) {
			g.uf.union(n, g.anchorNode[id])
		}
		g.segments.Insert(s)
		g.segNode = append(g.segNode, n)
	}
	g.log.Debug("wire added", slog.String("id", w.ID), slog.Int("points", len(w.Points)))
}

// AddJunction adds a junction marker.
func (g *Graph) AddJunction(j Junction) {
	g.junctions = append(g.junctions, j)
	n := g.newNode(KindJunction, len(g.junctions)-1)
	g.attach(n, j.Position)
	g.log.Debug("junction added", slog.String("id", j.ID), slog.String("at", j.Position.String()))
}

// AddLabel adds a net label.
func (g *Graph) AddLabel(l Label) {
	g.labels = append(g.labels, l)
	n := g.newNode(KindLabel, len(g.labels)-1)
	g.attach(n, l.Position)
	if g.opts.MergeLabelsByName && l.Kind != LabelHierarchical && l.Text != "" {
		if other, ok := g.byName[l.Text]; ok {
			g.uf.union(n, other)
		} else {
			g.byName[l.Text] = n
		}
	}
}

// AddNoConnect records a no-connect marker. Markers do not join nets; they
// only silence unconnected-pin findings at their position.
func (g *Graph) AddNoConnect(p geom.Point) {
	g.noConnects.Insert(p)
}

// SameNet reports whether two pins are on the same net. Unknown pins yield
// a *pins.PinNotFoundError.
func (g *Graph) SameNet(a, b pins.Key) (bool, error) {
	na, err := g.pinNode(a)
	if err != nil {
		return false, err
	}
	nb, err := g.pinNode(b)
	if err != nil {
		return false, err
	}
	return g.uf.find(na) == g.uf.find(nb), nil
}

// NetOf returns the net holding the pin.
func (g *Graph) NetOf(key pins.Key) (NetID, bool) {
	n, ok := g.pinNodes[key]
	if !ok {
		return 0, false
	}
	g.ensureNets()
	id, ok := g.netOf[g.uf.find(n)]
	return id, ok
}

func (g *Graph) pinNode(key pins.Key) (int, error) {
	if n, ok := g.pinNodes[key]; ok {
		return n, nil
	}
	var available []string
	for _, p := range g.pins {
		if p.ComponentRef == key.Component {
			available = append(available, p.Number)
		}
	}
	sort.Strings(available)
	return 0, &pins.PinNotFoundError{Component: key.Component, Pin: key.Number, Available: available}
}

// Pins returns the pins in insertion order.
func (g *Graph) Pins() []pins.Resolved {
	return g.pins
}

func (g *Graph) isNoConnect(i int) bool {
	if g.pins[i].IsNoConnect() {
		return true
	}
	for _, pos := range g.positions(i) {
		if len(g.noConnects.Near(pos, g.opts.Tolerance)) > 0 {
			return true
		}
	}
	return false
}
