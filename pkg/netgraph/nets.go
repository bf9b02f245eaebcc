package netgraph

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
	"github.com/OpenTraceLab/kiwire/pkg/pins"
)

// NetID numbers nets in the order returned by Nets.
type NetID int

// Net is one equivalence class of the graph.
type Net struct {
	ID        NetID      `json:"id"`
	Name      string     `json:"name"`
	Position  geom.Point `json:"position"`
	Pins      []pins.Key `json:"pins,omitempty"`
	Labels    []string   `json:"labels,omitempty"`
	Wires     []string   `json:"wires,omitempty"`
	Junctions []string   `json:"junctions,omitempty"`
}

// Nets returns every net ordered by the smallest member position. Net ids
// are recomputed after each change, so they are only stable between edits.
// The returned slices must not be modified.
func (g *Graph) Nets() []Net {
	g.ensureNets()
	return g.nets
}

// ExportJSON renders the net list.
func (g *Graph) ExportJSON() ([]byte, error) {
	nets := g.Nets()
	output := struct {
		Version   string  `json:"version"`
		NetCount  int     `json:"net_count"`
		Nets      []Net   `json:"nets"`
		Tolerance float64 `json:"tolerance"`
	}{
		Version:   "1.0",
		NetCount:  len(nets),
		Nets:      nets,
		Tolerance: g.opts.Tolerance,
	}
	return json.MarshalIndent(output, "", "  ")
}

func (g *Graph) ensureNets() {
	if !g.dirty && g.netOf != nil {
		return
	}

	members := make(map[int][]int)
	var roots []int
	for id := range g.nodes {
		r := g.uf.find(id)
		if _, ok := members[r]; !ok {
			roots = append(roots, r)
		}
		members[r] = append(members[r], id)
	}

	nets := make([]Net, 0, len(roots))
	rootOf := make([]int, 0, len(roots))
	for _, r := range roots {
		nets = append(nets, g.collect(members[r]))
		rootOf = append(rootOf, r)
	}

	order := make([]int, len(nets))
	for i := range order {
		order[i] = i
	}
	tol := g.opts.Tolerance
	sort.SliceStable(order, func(i, j int) bool {
		a, b := nets[order[i]], nets[order[j]]
		if c := geom.ComparePoints(a.Position, b.Position, tol); c != 0 {
			return c < 0
		}
		return a.Name < b.Name
	})

	g.nets = make([]Net, len(nets))
	g.netOf = make(map[int]NetID, len(nets))
	for i, idx := range order {
		n := nets[idx]
		n.ID = NetID(i)
		if n.Name == "" {
			n.Name = fmt.Sprintf("Net-%d", i)
		}
		g.nets[i] = n
		g.netOf[rootOf[idx]] = n.ID
	}
	g.dirty = false
}

// collect assembles a Net from its member nodes. The name is the first
// global label, else the first local label, else the first hierarchical
// label, else derived from the lowest pin.
func (g *Graph) collect(ids []int) Net {
	var n Net
	first := true
	take := func(p geom.Point) {
		if first || p.Less(n.Position) {
			n.Position = p
			first = false
		}
	}

	var labels []Label
	for _, id := range ids {
		nd := g.nodes[id]
		switch nd.kind {
		case KindPin:
			p := g.pins[nd.index]
			n.Pins = append(n.Pins, p.Key())
			take(p.Position)
		case KindWire:
			w := g.wires[nd.index]
			n.Wires = append(n.Wires, w.ID)
			for _, p := range w.Points {
				take(p)
			}
		case KindJunction:
			j := g.junctions[nd.index]
			n.Junctions = append(n.Junctions, j.ID)
			take(j.Position)
		case KindLabel:
			l := g.labels[nd.index]
			labels = append(labels, l)
			take(l.Position)
		}
	}

	sort.Slice(n.Pins, func(i, j int) bool {
		if n.Pins[i].Component != n.Pins[j].Component {
			return n.Pins[i].Component < n.Pins[j].Component
		}
		return n.Pins[i].Number < n.Pins[j].Number
	})
	sort.Strings(n.Wires)
	sort.Strings(n.Junctions)
	sort.SliceStable(labels, func(i, j int) bool {
		if labelRank(labels[i].Kind) != labelRank(labels[j].Kind) {
			return labelRank(labels[i].Kind) < labelRank(labels[j].Kind)
		}
		return labels[i].Text < labels[j].Text
	})
	for _, l := range labels {
		if len(n.Labels) == 0 || n.Labels[len(n.Labels)-1] != l.Text {
			n.Labels = append(n.Labels, l.Text)
		}
	}

	switch {
	case len(labels) > 0:
		n.Name = labels[0].Text
	case len(n.Pins) > 0:
		n.Name = fmt.Sprintf("Net-(%s-%s)", n.Pins[0].Component, n.Pins[0].Number)
	}
	return n
}

func labelRank(k LabelKind) int {
	switch k {
	case LabelGlobal:
		return 0
	case LabelLocal:
		return 1
	}
	return 2
}
