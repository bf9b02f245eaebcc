package junction

import (
	"github.com/OpenTraceLab/kiwire/pkg/geom"
)

// TouchWeight is how many wire ends a segment contributes at p: 1 when p is
// one of its endpoints, 2 when the segment passes through p, 0 otherwise.
// Summed over all segments at a point, a total of 3 or more means the point
// needs a junction.
func TouchWeight(s geom.Segment, p geom.Point, tol float64) int {
	switch {
	case s.HasEndpoint(p, tol):
		return 1
	case s.Contains(p, tol):
		return 2
	}
	return 0
}

// Tees returns the points where newPath joins existing wires at a vertex
// of either side and three or more wire ends meet without a junction. The
// typical case is a new wire ending on the middle of an existing one.
func Tees(newPath []geom.Point, existing []WireSegment, junctions []Junction, tol float64) ([]Junction, error) {
	d, err := NewDetector(existing, junctions, tol, 0)
	if err != nil {
		return nil, err
	}
	return d.Tees(newPath), nil
}

// Tees is the indexed form of the package-level Tees.
func (d *Detector) Tees(newPath []geom.Point) []Junction {
	segs := geom.Segments(newPath)
	var candidates []geom.Point
	candidates = append(candidates, newPath...)
	for _, seg := range segs {
		for _, id := range d.segIndex.Candidates(seg) {
			ex := d.segments[id]
			for _, p := range []geom.Point{ex.Start, ex.End} {
				if seg.Contains(p, d.tol) {
					candidates = append(candidates, p)
				}
			}
		}
	}

	var out []Junction
	for _, p := range candidates {
		if d.hasJunction(p) {
			continue
		}
		existing := d.weightAt(p)
		if existing == 0 {
			continue
		}
		if existing+pathWeight(segs, p, d.tol) >= 3 {
			out = appendUnique(out, p, d.tol)
		}
	}
	return out
}

// Required combines Detect and Tees: every junction the new path needs.
func (d *Detector) Required(newPath []geom.Point) []Junction {
	out := d.Detect(newPath)
	for _, j := range d.Tees(newPath) {
		out = appendUnique(out, j.Position, d.tol)
	}
	return out
}

func (d *Detector) weightAt(p geom.Point) int {
	w := 0
	for _, id := range d.segIndex.At(p, d.tol) {
		w += TouchWeight(d.segments[id].Segment(), p, d.tol)
	}
	return w
}

func pathWeight(segs []geom.Segment, p geom.Point, tol float64) int {
	w := 0
	for _, s := range segs {
		w += TouchWeight(s, p, tol)
	}
	return w
}
