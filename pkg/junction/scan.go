package junction

import (
	"github.com/OpenTraceLab/kiwire/pkg/geom"
)

// Wire is a polyline already on the sheet.
type Wire struct {
	ID     string
	Points []geom.Point
}

// Crossing is a mid-segment crossing of two different wires that has no
// junction.
type Crossing struct {
	Position geom.Point `json:"position"`
	WireIDs  [2]string  `json:"wires"`
}

// ScanAll applies the Detect rules to every pair of wires on the sheet and
// returns the crossings lacking a junction, deduplicated, in scan order.
// Segments of the same wire are never paired with each other.
func ScanAll(wires []Wire, junctions []Junction, tol float64) ([]Crossing, error) {
	var segs []WireSegment
	for _, w := range wires {
		segs = append(segs, SegmentsOf(w.ID, w.Points)...)
	}
	d, err := NewDetector(segs, junctions, tol, 0)
	if err != nil {
		return nil, err
	}

	var out []Crossing
	for i, a := range segs {
		for _, j := range d.segIndex.Candidates(a.Segment()) {
			if j <= i {
				continue
			}
			b := segs[j]
			if a.WireID == b.WireID {
				continue
			}
			p, ok := d.crossing(a.Segment(), b.Segment())
			if !ok || containsCrossing(out, p, tol) {
				continue
			}
			out = append(out, Crossing{Position: p, WireIDs: [2]string{a.WireID, b.WireID}})
		}
	}
	return out, nil
}

func containsCrossing(list []Crossing, p geom.Point, tol float64) bool {
	for _, c := range list {
		if c.Position.Near(p, tol) {
			return true
		}
	}
	return false
}
