package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

func EqualWithin(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r2.Vec) r2.Vec {
	return r2.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r2.Vec) r2.Vec {
	return r2.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)}
}

type Set []r2.Vec

// Min return the minimum components of a set of vectors.
func (a Set) Min() r2.Vec {
	vmin := a[0]
	for _, v := range a[1:] {
		vmin = MinElem(vmin, v)
	}
	return vmin
}

// Max return the maximum components of a set of vectors.
func (a Set) Max() r2.Vec {
	vmax := a[0]
	for _, v := range a[1:] {
		vmax = MaxElem(vmax, v)
	}
	return vmax
}

// Bounds returns the axis aligned bounding box of the set.
func (a Set) Bounds() r2.Box {
	return r2.Box{Min: a.Min(), Max: a.Max()}
}

// Distinct returns a copy of the set with consecutive points closer than tol
// collapsed into one. If the set is closed (last equals first within tol)
// the closing point is dropped as well.
func (a Set) Distinct(tol float64) Set {
	if len(a) == 0 {
		return nil
	}
	out := make(Set, 1, len(a))
	out[0] = a[0]
	for _, v := range a[1:] {
		if !EqualWithin(v, out[len(out)-1], tol) {
			out = append(out, v)
		}
	}
	if len(out) > 1 && EqualWithin(out[0], out[len(out)-1], tol) {
		out = out[:len(out)-1]
	}
	return out
}

// SignedArea returns the shoelace area of the polygon described by the set.
// It is negative for clockwise traversal.
func (a Set) SignedArea() float64 {
	n := len(a)
	var area float64
	for i := range a {
		p, q := a[i], a[(i+1)%n]
		area += p.X*q.Y - q.X*p.Y
	}
	return area / 2
}

type Pol struct {
	R, Theta float64
}

// PolarToCartesian converts a polar to a cartesian coordinate.
func (a Pol) PolarToCartesian() r2.Vec {
	return r2.Vec{X: a.R * math.Cos(a.Theta), Y: a.R * math.Sin(a.Theta)}
}

// PolarToXY converts polar to cartesian coordinates.
func PolarToXY(r, theta float64) r2.Vec {
	return Pol{r, theta}.PolarToCartesian()
}

// Cross returns the z component of the cross product of (b-a) and (c-a).
// Positive when a, b, c turn counter-clockwise.
func Cross(a, b, c r2.Vec) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
