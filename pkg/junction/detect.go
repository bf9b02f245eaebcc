package junction

import (
	"github.com/OpenTraceLab/kiwire/pkg/geom"
)

// WireSegment is one edge of a wire already on the sheet.
type WireSegment struct {
	Start  geom.Point
	End    geom.Point
	WireID string
}

// Segment returns the bare geometry.
func (w WireSegment) Segment() geom.Segment {
	return geom.Seg(w.Start, w.End)
}

// SegmentsOf splits a wire polyline into WireSegments owned by id.
func SegmentsOf(id string, points []geom.Point) []WireSegment {
	segs := geom.Segments(points)
	out := make([]WireSegment, len(segs))
	for i, s := range segs {
		out[i] = WireSegment{Start: s.Start, End: s.End, WireID: id}
	}
	return out
}

// Junction is a point where a junction marker exists or must be created.
type Junction struct {
	Position geom.Point `json:"position"`
}

// Detector answers junction queries against a fixed set of existing wires
// and junctions. Existing segments are bucketed so each query only tests
// nearby segments. A Detector must not be used while the slices it was
// built from are being modified.
type Detector struct {
	tol       float64
	segments  []WireSegment
	segIndex  *geom.SegmentIndex
	junctions *geom.PointIndex
}

// NewDetector indexes existing wire segments and junctions. cellSize is the
// bucket size of the segment index; non-positive values select a default.
func NewDetector(existing []WireSegment, junctions []Junction, tol, cellSize float64) (*Detector, error) {
	if err := geom.CheckTolerance(tol); err != nil {
		return nil, err
	}
	d := &Detector{
		tol:       tol,
		segments:  existing,
		segIndex:  geom.NewSegmentIndex(cellSize, tol),
		junctions: geom.NewPointIndex(tol),
	}
	for _, s := range existing {
		d.segIndex.Insert(s.Segment())
	}
	for _, j := range junctions {
		d.junctions.Insert(j.Position)
	}
	return d, nil
}

// Detect returns the points where newPath crosses an existing segment
// strictly inside both segments and no junction exists yet. Intersections
// within tolerance of a segment endpoint are plain wire meetings and are
// skipped, as are parallel and collinear pairs. Results are deduplicated
// and returned in scan order.
func Detect(newPath []geom.Point, existing []WireSegment, junctions []Junction, tol float64) ([]Junction, error) {
	d, err := NewDetector(existing, junctions, tol, 0)
	if err != nil {
		return nil, err
	}
	return d.Detect(newPath), nil
}

// Detect is the indexed form of the package-level Detect.
func (d *Detector) Detect(newPath []geom.Point) []Junction {
	var out []Junction
	for _, seg := range geom.Segments(newPath) {
		for _, id := range d.segIndex.Candidates(seg) {
			p, ok := d.crossing(seg, d.segments[id].Segment())
			if !ok {
				continue
			}
			out = appendUnique(out, p, d.tol)
		}
	}
	return out
}

// crossing applies the interior-crossing rules to one segment pair.
func (d *Detector) crossing(a, b geom.Segment) (geom.Point, bool) {
	p, ok := Intersect(a, b)
	if !ok {
		return geom.Point{}, false
	}
	if a.HasEndpoint(p, d.tol) || b.HasEndpoint(p, d.tol) {
		return geom.Point{}, false
	}
	if d.hasJunction(p) {
		return geom.Point{}, false
	}
	return p, true
}

func (d *Detector) hasJunction(p geom.Point) bool {
	return len(d.junctions.Near(p, d.tol)) > 0
}

func appendUnique(list []Junction, p geom.Point, tol float64) []Junction {
	for _, j := range list {
		if j.Position.Near(p, tol) {
			return list
		}
	}
	return append(list, Junction{Position: p})
}
