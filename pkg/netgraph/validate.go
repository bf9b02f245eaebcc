package netgraph

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
	"github.com/OpenTraceLab/kiwire/pkg/junction"
)

// FindingKind classifies a validation finding.
type FindingKind int

const (
	UnconnectedPin FindingKind = iota
	FloatingComponent
	MissingJunction
	OverlappingWires
)

func (k FindingKind) String() string {
	switch k {
	case UnconnectedPin:
		return "unconnected_pin"
	case FloatingComponent:
		return "floating_component"
	case MissingJunction:
		return "missing_junction"
	case OverlappingWires:
		return "overlapping_wires"
	}
	return fmt.Sprintf("FindingKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k FindingKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Severity ranks findings. Errors are meant to block saving.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Finding is one wiring defect.
type Finding struct {
	Kind      FindingKind `json:"kind"`
	Severity  Severity    `json:"severity"`
	Position  geom.Point  `json:"position"`
	Component string      `json:"component,omitempty"`
	Pin       string      `json:"pin,omitempty"`
	WireIDs   []string    `json:"wires,omitempty"`
	Message   string      `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s at %s: %s", f.Severity, f.Kind, f.Position, f.Message)
}

// Report is the result of Validate.
type Report struct {
	Findings []Finding `json:"findings"`
}

// HasErrors reports whether any finding has error severity.
func (r Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of findings of the given kind.
func (r Report) Count(kind FindingKind) int {
	n := 0
	for _, f := range r.Findings {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// JSON renders the report with error and warning totals.
func (r Report) JSON() ([]byte, error) {
	errs := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			errs++
		}
	}
	findings := r.Findings
	if findings == nil {
		findings = []Finding{}
	}
	output := struct {
		Errors   int       `json:"errors"`
		Warnings int       `json:"warnings"`
		Findings []Finding `json:"findings"`
	}{
		Errors:   errs,
		Warnings: len(r.Findings) - errs,
		Findings: findings,
	}
	return json.MarshalIndent(output, "", "  ")
}

// Validate sweeps the graph for wiring defects. It never fails; findings
// are ordered by position, then kind.
func (g *Graph) Validate() Report {
	var findings []Finding
	findings = append(findings, g.pinFindings()...)
	findings = append(findings, g.missingJunctions()...)
	findings = append(findings, g.overlaps()...)

	tol := g.opts.Tolerance
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if c := geom.ComparePoints(a.Position, b.Position, tol); c != 0 {
			return c < 0
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Component != b.Component {
			return a.Component < b.Component
		}
		return a.Pin < b.Pin
	})
	g.log.Debug("validated", slog.Int("findings", len(findings)))
	return Report{Findings: findings}
}

// touched reports whether pin i meets a wire, junction, label or a pin of
// another component.
func (g *Graph) touched(i int) bool {
	ref := g.pins[i].ComponentRef
	tol := g.opts.Tolerance
	for _, pos := range g.positions(i) {
		for _, id := range g.anchors.Near(pos, tol) {
			nd := g.nodes[g.anchorNode[id]]
			if nd.kind != KindPin || g.pins[nd.index].ComponentRef != ref {
				return true
			}
		}
		if len(g.segments.At(pos, tol)) > 0 {
			return true
		}
	}
	return false
}

func (g *Graph) pinFindings() []Finding {
	type tally struct {
		pins, unconnected int
		pos               geom.Point
	}
	var comps []string
	tallies := make(map[string]*tally)

	var out []Finding
	for i, p := range g.pins {
		if g.isNoConnect(i) {
			continue
		}
		t, ok := tallies[p.ComponentRef]
		if !ok {
			t = &tally{pos: p.Position}
			tallies[p.ComponentRef] = t
			comps = append(comps, p.ComponentRef)
		}
		t.pins++
		if p.Position.Less(t.pos) {
			t.pos = p.Position
		}
		if g.touched(i) {
			continue
		}
		t.unconnected++
		out = append(out, Finding{
			Kind:      UnconnectedPin,
			Severity:  SeverityWarning,
			Position:  p.Position,
			Component: p.ComponentRef,
			Pin:       p.Number,
			Message:   fmt.Sprintf("pin %s is not connected", p.Key()),
		})
	}

	for _, ref := range comps {
		t := tallies[ref]
		if t.unconnected == t.pins {
			out = append(out, Finding{
				Kind:      FloatingComponent,
				Severity:  SeverityWarning,
				Position:  t.pos,
				Component: ref,
				Message:   fmt.Sprintf("component %s has no connected pins", ref),
			})
		}
	}
	return out
}

func (g *Graph) hasJunction(p geom.Point) bool {
	for _, id := range g.anchors.Near(p, g.opts.Tolerance) {
		if g.nodes[g.anchorNode[id]].kind == KindJunction {
			return true
		}
	}
	return false
}

func (g *Graph) wireID(seg int) string {
	return g.wires[g.nodes[g.segNode[seg]].index].ID
}

// missingJunctions finds wire vertices where three or more wire ends meet
// and mid-segment crossings, both without a junction.
func (g *Graph) missingJunctions() []Finding {
	tol := g.opts.Tolerance
	var out []Finding
	reported := geom.NewPointIndex(g.opts.SegmentCell)

	for _, w := range g.wires {
		for _, v := range w.Points {
			if len(reported.Near(v, tol)) > 0 || g.hasJunction(v) {
				continue
			}
			weight := 0
			var ids []string
			for _, seg := range g.segments.At(v, tol) {
				weight += junction.TouchWeight(g.segments.Segment(seg), v, tol)
				ids = append(ids, g.wireID(seg))
			}
			if weight < 3 {
				continue
			}
			reported.Insert(v)
			ids = uniqueSorted(ids)
			out = append(out, Finding{
				Kind:     MissingJunction,
				Severity: SeverityError,
				Position: v,
				WireIDs:  ids,
				Message:  fmt.Sprintf("%d wire ends meet without a junction", weight),
			})
		}
	}

	var marks []junction.Junction
	for _, j := range g.junctions {
		marks = append(marks, junction.Junction{Position: j.Position})
	}
	// tolerance was validated in New
	crossings, _ := junction.ScanAll(g.wires, marks, tol)
	for _, c := range crossings {
		if len(reported.Near(c.Position, tol)) > 0 {
			continue
		}
		reported.Insert(c.Position)
		out = append(out, Finding{
			Kind:     MissingJunction,
			Severity: SeverityError,
			Position: c.Position,
			WireIDs:  uniqueSorted(c.WireIDs[:]),
			Message:  fmt.Sprintf("wires %s and %s cross without a junction", c.WireIDs[0], c.WireIDs[1]),
		})
	}
	return out
}

// overlaps finds collinear segments of different wires sharing more than
// tolerance of length with no junction at either end of the shared part.
func (g *Graph) overlaps() []Finding {
	tol := g.opts.Tolerance
	var out []Finding
	seen := make(map[string]bool)

	for i := 0; i < g.segments.Len(); i++ {
		a := g.segments.Segment(i)
		for _, j := range g.segments.Candidates(a) {
			if j <= i || g.segNode[i] == g.segNode[j] {
				continue
			}
			ov, ok := geom.CollinearOverlap(a, g.segments.Segment(j), tol)
			if !ok || g.hasJunction(ov.Start) || g.hasJunction(ov.End) {
				continue
			}
			pos := ov.Start
			if ov.End.Less(pos) {
				pos = ov.End
			}
			ids := uniqueSorted([]string{g.wireID(i), g.wireID(j)})
			key := strings.Join(ids, "\x00") + pos.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Finding{
				Kind:     OverlappingWires,
				Severity: SeverityWarning,
				Position: pos,
				WireIDs:  ids,
				Message:  fmt.Sprintf("wires %s overlap for %.4g mm", strings.Join(ids, " and "), ov.Length()),
			})
		}
	}
	return out
}

func uniqueSorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	n := 0
	for i, s := range out {
		if i == 0 || s != out[n-1] {
			out[n] = s
			n++
		}
	}
	return out[:n]
}
