package leimesh

import (
	"errors"
	"math"

	"github.com/kiteworks/leimesh/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// SDF2 is the interface to a 2d signed distance function object.
type SDF2 interface {
	// Evaluate takes a point in 2D space as input and returns
	// the minimum distance of the SDF2 to the point. The distance
	// is negative if the point is contained within the SDF2.
	Evaluate(p r2.Vec) float64

	// Bounds returns the bounding box that completely contains the SDF2.
	Bounds() r2.Box
}

// polygon is an SDF2 made from a closed set of line segments.
type polygon struct {
	vertex []r2.Vec  // vertices
	vector []r2.Vec  // unit line vectors
	length []float64 // line lengths
	bb     r2.Box    // bounding box
}

// Polygon returns an SDF2 made from a closed set of line segments.
// Consecutive coincident vertices are merged.
func Polygon(vertex []r2.Vec) (SDF2, error) {
	s := polygon{}
	s.vertex = d2.Set(vertex).Distinct(tolerance)
	if len(s.vertex) < 3 {
		return nil, errors.New("number of distinct vertices < 3")
	}
	// Close the loop.
	s.vertex = append(s.vertex, s.vertex[0])

	nsegs := len(s.vertex) - 1
	s.vector = make([]r2.Vec, nsegs)
	s.length = make([]float64, nsegs)
	for i := 0; i < nsegs; i++ {
		l := r2.Sub(s.vertex[i+1], s.vertex[i])
		s.length[i] = r2.Norm(l)
		s.vector[i] = r2.Unit(l)
	}
	s.bb = d2.Set(s.vertex).Bounds()
	return &s, nil
}

// Evaluate returns the minimum distance for a 2d polygon.
func (s *polygon) Evaluate(p r2.Vec) float64 {
	dd := math.MaxFloat64 // d^2 to polygon (>0)
	wn := 0               // winding number (inside/outside)

	nsegs := len(s.vertex) - 1
	pb := r2.Sub(p, s.vertex[0])

	for i := 0; i < nsegs; i++ {
		a := s.vertex[i]
		b := s.vertex[i+1]

		pa := pb
		pb = r2.Sub(p, b)

		t := r2.Dot(pa, s.vector[i])                                  // t-parameter of projection onto line
		dn := r2.Dot(pa, r2.Vec{X: s.vector[i].Y, Y: -s.vector[i].X}) // normal distance from p to line

		// Distance to line segment
		if t < 0 {
			dd = math.Min(dd, r2.Norm2(pa))
		} else if t > s.length[i] {
			dd = math.Min(dd, r2.Norm2(pb))
		} else {
			dd = math.Min(dd, dn*dn)
		}

		// See: http://geomalgorithms.com/a03-_inclusion.html
		if a.Y <= p.Y {
			if b.Y > p.Y && dn < 0 { // upward crossing, p left of segment
				wn++
			}
		} else if b.Y <= p.Y && dn > 0 { // downward crossing, p right of segment
			wn--
		}
	}

	d := math.Sqrt(dd)
	if wn != 0 {
		return -d
	}
	return d
}

// Bounds returns the bounding box of a 2d polygon.
func (s *polygon) Bounds() r2.Box {
	return s.bb
}

// SDF returns the signed distance function of the profile contour.
func (p *Profile) SDF() SDF2 {
	s, err := Polygon(p.pts)
	if err != nil {
		// Build guarantees at least the tube arc and four segments.
		panic(err)
	}
	return s
}
