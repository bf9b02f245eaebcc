package geom

import (
	"math"
	"sort"
)

// maxSegmentCells bounds how many buckets a single segment may occupy.
// Longer segments go to an overflow list that every query scans.
const maxSegmentCells = 4096

type cell struct {
	X, Y int64
}

func cellOf(p Point, size float64) cell {
	return cell{X: int64(math.Floor(p.X / size)), Y: int64(math.Floor(p.Y / size))}
}

// PointIndex buckets points in a uniform grid so that proximity queries
// touch only neighbouring cells.
type PointIndex struct {
	size   float64
	cells  map[cell][]int
	points []Point
}

// NewPointIndex creates an index with the given bucket size. Sizes that are
// not positive fall back to DefaultTolerance.
func NewPointIndex(size float64) *PointIndex {
	if !(size > 0) {
		size = DefaultTolerance
	}
	return &PointIndex{size: size, cells: make(map[cell][]int)}
}

// Insert adds p and returns its id (insertion order, starting at 0).
func (ix *PointIndex) Insert(p Point) int {
	id := len(ix.points)
	ix.points = append(ix.points, p)
	c := cellOf(p, ix.size)
	ix.cells[c] = append(ix.cells[c], id)
	return id
}

// Len returns the number of indexed points.
func (ix *PointIndex) Len() int {
	return len(ix.points)
}

// Point returns the point stored under id.
func (ix *PointIndex) Point(id int) Point {
	return ix.points[id]
}

// Near returns the ids of all points within tol of p, in ascending order.
func (ix *PointIndex) Near(p Point, tol float64) []int {
	reach := int64(math.Ceil(tol / ix.size))
	c := cellOf(p, ix.size)
	var ids []int
	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			for _, id := range ix.cells[cell{X: c.X + dx, Y: c.Y + dy}] {
				if ix.points[id].Near(p, tol) {
					ids = append(ids, id)
				}
			}
		}
	}
	sort.Ints(ids)
	return ids
}

// Along returns the ids of all points within tol of segment s, ascending.
func (ix *PointIndex) Along(s Segment, tol float64) []int {
	lo, hi := s.Bounds()
	pad := Point{X: tol, Y: tol}
	c0 := cellOf(lo.Sub(pad), ix.size)
	c1 := cellOf(hi.Add(pad), ix.size)
	var ids []int
	if (c1.X-c0.X+1)*(c1.Y-c0.Y+1) > int64(len(ix.points)) {
		for id, p := range ix.points {
			if s.Contains(p, tol) {
				ids = append(ids, id)
			}
		}
		return ids
	}
	for x := c0.X; x <= c1.X; x++ {
		for y := c0.Y; y <= c1.Y; y++ {
			for _, id := range ix.cells[cell{X: x, Y: y}] {
				if s.Contains(ix.points[id], tol) {
					ids = append(ids, id)
				}
			}
		}
	}
	sort.Ints(ids)
	return ids
}

// SegmentIndex buckets segments by the cells their padded bounding box
// covers.
type SegmentIndex struct {
	size     float64
	pad      float64
	cells    map[cell][]int
	overflow []int
	segs     []Segment
}

// NewSegmentIndex creates an index with the given bucket size. pad widens
// every segment's box so that queries within pad of a segment find it.
func NewSegmentIndex(size, pad float64) *SegmentIndex {
	if !(size > 0) {
		size = GridStandard
	}
	return &SegmentIndex{size: size, pad: pad, cells: make(map[cell][]int)}
}

// Insert adds s and returns its id.
func (ix *SegmentIndex) Insert(s Segment) int {
	id := len(ix.segs)
	ix.segs = append(ix.segs, s)
	lo, hi := s.Bounds()
	pad := Point{X: ix.pad, Y: ix.pad}
	c0 := cellOf(lo.Sub(pad), ix.size)
	c1 := cellOf(hi.Add(pad), ix.size)
	if (c1.X-c0.X+1)*(c1.Y-c0.Y+1) > maxSegmentCells {
		ix.overflow = append(ix.overflow, id)
		return id
	}
	for x := c0.X; x <= c1.X; x++ {
		for y := c0.Y; y <= c1.Y; y++ {
			c := cell{X: x, Y: y}
			ix.cells[c] = append(ix.cells[c], id)
		}
	}
	return id
}

// Len returns the number of indexed segments.
func (ix *SegmentIndex) Len() int {
	return len(ix.segs)
}

// Segment returns the segment stored under id.
func (ix *SegmentIndex) Segment(id int) Segment {
	return ix.segs[id]
}

// At returns the ids of segments passing within tol of p, ascending.
// tol must not exceed the pad the index was built with.
func (ix *SegmentIndex) At(p Point, tol float64) []int {
	var ids []int
	seen := make(map[int]bool)
	check := func(id int) {
		if seen[id] {
			return
		}
		seen[id] = true
		if ix.segs[id].Contains(p, tol) {
			ids = append(ids, id)
		}
	}
	for _, id := range ix.cells[cellOf(p, ix.size)] {
		check(id)
	}
	for _, id := range ix.overflow {
		check(id)
	}
	sort.Ints(ids)
	return ids
}

// Candidates returns the ids of segments whose padded box may touch s,
// ascending. Callers apply the exact test.
func (ix *SegmentIndex) Candidates(s Segment) []int {
	lo, hi := s.Bounds()
	pad := Point{X: ix.pad, Y: ix.pad}
	c0 := cellOf(lo.Sub(pad), ix.size)
	c1 := cellOf(hi.Add(pad), ix.size)
	seen := make(map[int]bool)
	var ids []int
	add := func(id int) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if (c1.X-c0.X+1)*(c1.Y-c0.Y+1) > maxSegmentCells {
		for id := range ix.segs {
			add(id)
		}
	} else {
		for x := c0.X; x <= c1.X; x++ {
			for y := c0.Y; y <= c1.Y; y++ {
				for _, id := range ix.cells[cell{X: x, Y: y}] {
					add(id)
				}
			}
		}
		for _, id := range ix.overflow {
			add(id)
		}
	}
	sort.Ints(ids)
	return ids
}
