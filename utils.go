package leimesh

import (
	"math"

	"github.com/kiteworks/leimesh/internal/d2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	pi        = math.Pi
	tau       = 2 * pi
	tolerance = 1e-9
)

// DtoR converts degrees to radians
func DtoR(degrees float64) float64 {
	return (pi / 180) * degrees
}

// RtoD converts radians to degrees
func RtoD(radians float64) float64 {
	return (180 / pi) * radians
}

// linspace returns n equally spaced values from a to b inclusive.
// a may be greater than b.
func linspace(a, b float64, n int) []float64 {
	if n == 1 {
		return []float64{a}
	}
	s := floats.Span(make([]float64, n), a, b)
	s[n-1] = b
	return s
}

// arc samples n points on the circle of given center and radius for
// angles spanning from start to end (radians) inclusive.
func arc(center r2.Vec, radius, start, end float64, n int) []r2.Vec {
	theta := linspace(start, end, n)
	pts := make([]r2.Vec, n)
	for i, t := range theta {
		pts[i] = r2.Add(center, d2.PolarToXY(radius, t))
	}
	return pts
}

// percent returns pct percent of v.
func percent(pct, v float64) float64 { return pct * v / 100 }
