// Package junction finds the points where a junction marker must be placed
// so that crossing or tee-ing wires are recognised as connected.
package junction

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
)

// parallelEpsilon is the determinant magnitude below which two segments are
// treated as parallel or collinear.
const parallelEpsilon = 1e-10

// paramSlack absorbs rounding when checking 0 <= t, s <= 1.
const paramSlack = 1e-9

// Intersect returns the intersection point of segments a and b, solving
//
//	a.Start + t*(a.End-a.Start) = b.Start + s*(b.End-b.Start)
//
// for (t, s). ok is false for parallel or collinear segments and when the
// lines meet outside either segment.
func Intersect(a, b geom.Segment) (p geom.Point, ok bool) {
	da := a.Vector()
	db := b.Vector()

	m := mat.NewDense(2, 2, []float64{
		da.X, -db.X,
		da.Y, -db.Y,
	})
	if math.Abs(mat.Det(m)) < parallelEpsilon {
		return geom.Point{}, false
	}

	rhs := mat.NewVecDense(2, []float64{
		b.Start.X - a.Start.X,
		b.Start.Y - a.Start.Y,
	})
	var ts mat.VecDense
	if err := ts.SolveVec(m, rhs); err != nil {
		return geom.Point{}, false
	}

	t, s := ts.AtVec(0), ts.AtVec(1)
	if t < -paramSlack || t > 1+paramSlack || s < -paramSlack || s > 1+paramSlack {
		return geom.Point{}, false
	}
	return a.At(math.Max(0, math.Min(1, t))), true
}
