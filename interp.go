package leimesh

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// Cubic is the polynomial y = A·x³ + B·x² + C·x + D.
type Cubic struct {
	A, B, C, D float64
}

// Eval returns the value of the cubic at x.
func (c Cubic) Eval(x float64) float64 {
	return ((c.A*x+c.B)*x+c.C)*x + c.D
}

// Slope returns dy/dx of the cubic at x.
func (c Cubic) Slope(x float64) float64 {
	return (3*c.A*x+2*c.B)*x + c.C
}

// FitCubic returns the unique cubic through p1 and p2 whose slopes at those
// points are tan(t1) and tan(t2). Angles are in radians.
func FitCubic(p1, p2 r2.Vec, t1, t2 float64) (Cubic, error) {
	x1, x2 := p1.X, p2.X
	if x1 == x2 {
		return Cubic{}, &DegenerateInputError{X: x1}
	}
	A := mat.NewDense(4, 4, []float64{
		x1 * x1 * x1, x1 * x1, x1, 1,
		x2 * x2 * x2, x2 * x2, x2, 1,
		3 * x1 * x1, 2 * x1, 1, 0,
		3 * x2 * x2, 2 * x2, 1, 0,
	})
	b := mat.NewVecDense(4, []float64{p1.Y, p2.Y, math.Tan(t1), math.Tan(t2)})
	var coef mat.VecDense
	if err := coef.SolveVec(A, b); err != nil {
		return Cubic{}, &DegenerateInputError{X: x1, err: err}
	}
	return Cubic{
		A: coef.AtVec(0),
		B: coef.AtVec(1),
		C: coef.AtVec(2),
		D: coef.AtVec(3),
	}, nil
}

// Interpolate samples n points of the cubic fitted between p1 and p2 with
// tangent angles t1 and t2 (radians). The x coordinates are uniformly spaced
// from p1.X to p2.X inclusive and the first and last points are p1 and p2.
func Interpolate(p1, p2 r2.Vec, t1, t2 float64, n int) ([]r2.Vec, error) {
	if n < 2 {
		return nil, invalid("sample count", float64(n), "need at least 2 points")
	}
	c, err := FitCubic(p1, p2, t1, t2)
	if err != nil {
		return nil, err
	}
	xs := linspace(p1.X, p2.X, n)
	pts := make([]r2.Vec, n)
	for i, x := range xs {
		pts[i] = r2.Vec{X: x, Y: c.Eval(x)}
	}
	// Pin the ends so adjoining segments share bit-identical points.
	pts[0], pts[n-1] = p1, p2
	return pts, nil
}
