package leimesh

import (
	"math"

	"github.com/kiteworks/leimesh/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// thicknessPct is the canopy thickness as percent of chord.
	thicknessPct = 0.5
	// teRoundFactor is the trailing edge rounding radius relative to the
	// canopy thickness.
	teRoundFactor = 0.2
	// teRoundOffset is the angular offset (degrees) of the trailing edge
	// rounding anchors from the upper and lower trailing edge points.
	teRoundOffset = 5.0

	defaultSmoothRadius = 0.06
	defaultSmoothPoints = 20
)

// Params defines an LEI airfoil section. Percentages are relative to the
// chord and angles are in degrees.
type Params struct {
	Chord     float64 // chord length
	Depth     float64 // maximum camber, % of chord
	TubeSize  float64 // leading edge tube diameter, % of chord
	CamberAt  float64 // x position of maximum camber, % of chord
	SeamAngle float64 // tube/canopy seam angle (degrees)
	TEAngle   float64 // trailing edge angle (degrees)
	Points    int     // total point budget for the tube, camber and trailing regions

	// SmoothRadius is the radius of the arc rounding the seam at the lower
	// surface. Zero selects 0.06.
	SmoothRadius float64
	// SmoothPoints is the number of samples on the seam smoothing arc.
	// Zero selects 20.
	SmoothPoints int
}

// DefaultParams returns the reference kite section: 9% depth, 9% tube at 25%
// chord, 35° seam and 7° trailing edge on a unit chord.
func DefaultParams() Params {
	return Params{
		Chord:     1,
		Depth:     9,
		TubeSize:  9,
		CamberAt:  25,
		SeamAngle: 35,
		TEAngle:   7,
		Points:    100,
	}
}

// Validate checks the parameters are in the range the construction is
// defined for.
func (p Params) Validate() error {
	switch {
	case !(p.Chord > 0) || math.IsInf(p.Chord, 0):
		return invalid("chord", p.Chord, "must be positive and finite")
	case p.Points <= 0:
		return invalid("points", float64(p.Points), "must be positive")
	case p.SmoothRadius < 0:
		return invalid("smooth radius", p.SmoothRadius, "must not be negative")
	case p.SmoothPoints < 0 || p.SmoothPoints == 1:
		return invalid("smooth points", float64(p.SmoothPoints), "must be 0 or at least 2")
	case !(p.SeamAngle > 0 && p.SeamAngle < 90):
		return invalid("seam angle", p.SeamAngle, "must be within (0,90) degrees")
	case !(p.TEAngle > -90 && p.TEAngle < 90):
		return invalid("trailing edge angle", p.TEAngle, "must be within (-90,90) degrees")
	}
	for _, pct := range []struct {
		name string
		v    float64
	}{
		{"depth", p.Depth},
		{"tube size", p.TubeSize},
		{"camber location", p.CamberAt},
	} {
		if !(pct.v > 0 && pct.v < 100) {
			return invalid(pct.name, pct.v, "percentage must be within (0,100)")
		}
	}
	return nil
}

func (p Params) smoothRadius() float64 {
	if p.SmoothRadius == 0 {
		return defaultSmoothRadius
	}
	return p.SmoothRadius
}

func (p Params) smoothPoints() int {
	if p.SmoothPoints == 0 {
		return defaultSmoothPoints
	}
	return p.SmoothPoints
}

// Allocation is the point budget given to each of the three profile regions.
type Allocation struct {
	Tube     int // leading edge arc
	Camber   int // seam to maximum camber, upper and lower
	Trailing int // maximum camber to trailing edge, upper and lower
}

// Sum returns the total number of allocated points.
func (a Allocation) Sum() int { return a.Tube + a.Camber + a.Trailing }

// Allocate distributes total points over the tube, camber and trailing
// regions with weights 6·tubeSize, 2·camberAt and 2·(100-camberAt).
// Results are truncated so the sum never exceeds total. Every region must
// receive at least 2 points.
func Allocate(total int, tubeSize, camberAt float64) (Allocation, error) {
	if total <= 0 {
		return Allocation{}, invalid("points", float64(total), "must be positive")
	}
	if !(tubeSize > 0 && tubeSize < 100) {
		return Allocation{}, invalid("tube size", tubeSize, "percentage must be within (0,100)")
	}
	if !(camberAt > 0 && camberAt < 100) {
		return Allocation{}, invalid("camber location", camberAt, "percentage must be within (0,100)")
	}
	n := float64(total)
	sum := 6*tubeSize + 200
	a := Allocation{
		Tube:     int(n * (6 * tubeSize) / sum),
		Camber:   int(n * (2 * camberAt) / sum),
		Trailing: int(n * (2 * (100 - camberAt)) / sum),
	}
	for _, region := range []struct {
		name string
		n    int
	}{{"tube", a.Tube}, {"camber", a.Camber}, {"trailing", a.Trailing}} {
		if region.n < 2 {
			return Allocation{}, invalid("points", n, "budget leaves the "+region.name+" region with fewer than 2 points")
		}
	}
	return a, nil
}

// KeyPoints are the construction points of a profile.
type KeyPoints struct {
	TubeCenter r2.Vec
	TubeRadius float64
	// Thickness is the canopy thickness.
	Thickness float64

	SeamExit    r2.Vec // tube/canopy junction on the upper surface
	Camber      r2.Vec // maximum camber on the upper surface
	CamberInner r2.Vec // Camber offset by the canopy thickness

	TrailingEdge r2.Vec // chord end, center of the trailing edge rounding
	TERadius     float64
	TEUpper      r2.Vec // upper surface end
	TELower      r2.Vec // lower surface start
	TERoundUpper r2.Vec // rounding anchor next to TEUpper
	TERoundLower r2.Vec // rounding anchor next to TELower

	SmoothCenter r2.Vec
	SmoothRadius float64
	SmoothEnd    r2.Vec // lower surface end, rejoins the tube
}

func keyPoints(p Params) KeyPoints {
	c := p.Chord
	seam := DtoR(p.SeamAngle)
	te := DtoR(p.TEAngle)
	radius := p.TubeSize * c / 100 / 2
	e := percent(thicknessPct, c)

	var k KeyPoints
	k.TubeCenter = r2.Vec{X: radius}
	k.TubeRadius = radius
	k.Thickness = e
	k.SeamExit = r2.Vec{X: radius * (1 - math.Cos(seam)), Y: radius * math.Sin(seam)}
	k.Camber = r2.Vec{X: percent(p.CamberAt, c), Y: percent(p.Depth, c)}
	k.CamberInner = r2.Vec{X: k.Camber.X, Y: k.Camber.Y - e}

	k.TrailingEdge = r2.Vec{X: c}
	r1 := e * teRoundFactor
	k.TERadius = r1
	k.TEUpper = r2.Add(k.TrailingEdge, r2.Vec{X: r1 * math.Sin(te), Y: r1 * math.Cos(te)})
	k.TELower = r2.Sub(k.TrailingEdge, r2.Vec{X: r1 * math.Sin(te), Y: r1 * math.Cos(te)})
	up := te + DtoR(teRoundOffset)
	lo := te + DtoR(180-teRoundOffset)
	k.TERoundUpper = r2.Add(k.TrailingEdge, r2.Vec{X: r1 * math.Sin(up), Y: r1 * math.Cos(up)})
	k.TERoundLower = r2.Add(k.TrailingEdge, r2.Vec{X: r1 * math.Sin(lo), Y: r1 * math.Cos(lo)})

	r := p.smoothRadius()
	beta := seam
	k.SmoothRadius = r
	k.SmoothCenter = r2.Vec{
		X: radius + (radius+r)*(-math.Cos(seam+pi)),
		Y: (radius + r) * math.Sin(seam+pi),
	}
	k.SmoothEnd = r2.Vec{X: k.SmoothCenter.X - r*math.Cos(beta), Y: k.SmoothCenter.Y + r*math.Sin(beta)}
	return k
}

// Section identifies a contiguous run of profile points.
type Section int

const (
	SectionTube          Section = iota // leading edge tube arc
	SectionCamberUpper                  // seam exit to maximum camber
	SectionTrailingUpper                // maximum camber to upper trailing edge
	SectionTrailingLower                // lower trailing edge to inner camber
	SectionCamberLower                  // inner camber back to the tube
	SectionSmoothing                    // seam smoothing arc interior
	numSections
)

func (s Section) String() string {
	switch s {
	case SectionTube:
		return "tube"
	case SectionCamberUpper:
		return "camber-upper"
	case SectionTrailingUpper:
		return "trailing-upper"
	case SectionTrailingLower:
		return "trailing-lower"
	case SectionCamberLower:
		return "camber-lower"
	case SectionSmoothing:
		return "smoothing"
	}
	return "unknown"
}

// RefineKind classifies points the mesher should refine around.
type RefineKind int

const (
	// RefineCenter marks the center of a small-radius rounding.
	RefineCenter RefineKind = iota
	// RefineSmallRadius marks a point on a small-radius rounding.
	RefineSmallRadius
)

// RefinePoint is a point tagged for local mesh refinement. SizeFactor scales
// the near-profile element size.
type RefinePoint struct {
	Pos        r2.Vec
	Kind       RefineKind
	SizeFactor float64
}

// Profile is a closed LEI airfoil contour. The first and last point are
// identical and the contour is traversed clockwise: along the tube from
// its lower side over the nose, along the upper canopy to the trailing
// edge, and back along the lower canopy.
type Profile struct {
	params Params
	alloc  Allocation
	key    KeyPoints
	pts    []r2.Vec
	start  [numSections + 1]int
}

// Build constructs the profile for p.
func Build(p Params) (*Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	alloc, err := Allocate(p.Points, p.TubeSize, p.CamberAt)
	if err != nil {
		return nil, err
	}
	seam := DtoR(p.SeamAngle)
	te := DtoR(p.TEAngle)
	k := keyPoints(p)

	const deltaSeam = pi
	tube := arc(k.TubeCenter, k.TubeRadius, 3*pi-seam-deltaSeam, pi-seam, alloc.Tube)
	seamSlope := pi/2 - seam
	type segment struct {
		from, to r2.Vec
		t1, t2   float64
		n        int
		shared   bool // first point equals the last point already emitted
	}
	// In section order, starting at SectionCamberUpper.
	segments := []segment{
		{k.SeamExit, k.Camber, seamSlope, 0, alloc.Camber, true},
		{k.Camber, k.TEUpper, 0, -te, alloc.Trailing, true},
		{k.TELower, k.CamberInner, -te, 0, alloc.Trailing, false},
		{k.CamberInner, k.SmoothEnd, 0, seamSlope, alloc.Camber, true},
	}
	smooth := arc(k.SmoothCenter, k.SmoothRadius, pi-seam, 2*pi-seam-deltaSeam, p.smoothPoints())

	prof := &Profile{params: p, alloc: alloc, key: k}
	pts := make([]r2.Vec, 0, alloc.Tube+2*alloc.Camber+2*alloc.Trailing+len(smooth))
	pts = append(pts, tube...)
	for i, s := range segments {
		sampled, err := Interpolate(s.from, s.to, s.t1, s.t2, s.n)
		if err != nil {
			return nil, err
		}
		if s.shared {
			sampled = sampled[1:]
		}
		prof.start[SectionCamberUpper+Section(i)] = len(pts)
		pts = append(pts, sampled...)
	}
	prof.start[SectionSmoothing] = len(pts)
	pts = append(pts, smooth[1:len(smooth)-1]...)
	prof.start[numSections] = len(pts)
	// SmoothEnd and the smoothing arc end on the first tube point up to
	// rounding. Snap so the contour is closed exactly.
	pts[len(pts)-1] = pts[0]
	prof.pts = pts
	return prof, nil
}

// Params returns the parameters the profile was built from.
func (p *Profile) Params() Params { return p.params }

// Allocation returns the per-region point budget used.
func (p *Profile) Allocation() Allocation { return p.alloc }

// KeyPoints returns the construction points of the profile.
func (p *Profile) KeyPoints() KeyPoints { return p.key }

// Len returns the number of points in the contour, closing point included.
func (p *Profile) Len() int { return len(p.pts) }

// At returns the i'th contour point.
func (p *Profile) At(i int) r2.Vec { return p.pts[i] }

// Points returns a copy of the contour.
func (p *Profile) Points() []r2.Vec {
	return append([]r2.Vec(nil), p.pts...)
}

// Section returns a copy of the points belonging to section s.
func (p *Profile) Section(s Section) []r2.Vec {
	return append([]r2.Vec(nil), p.pts[p.start[s]:p.start[s+1]]...)
}

// Upper returns the contour from its first point up to and including the
// upper trailing edge point.
func (p *Profile) Upper() []r2.Vec {
	return append([]r2.Vec(nil), p.pts[:p.start[SectionTrailingLower]]...)
}

// Lower returns the contour from the lower trailing edge point to the
// closing point.
func (p *Profile) Lower() []r2.Vec {
	return append([]r2.Vec(nil), p.pts[p.start[SectionTrailingLower]:]...)
}

// Distinct returns the contour without consecutive coincident points and
// without the closing point.
func (p *Profile) Distinct() []r2.Vec {
	return d2.Set(p.pts).Distinct(tolerance * p.params.Chord)
}

// RefinePoints returns the trailing edge rounding anchors and their center.
func (p *Profile) RefinePoints() []RefinePoint {
	return []RefinePoint{
		{Pos: p.key.TERoundUpper, Kind: RefineSmallRadius, SizeFactor: 0.1},
		{Pos: p.key.TERoundLower, Kind: RefineSmallRadius, SizeFactor: 0.1},
		{Pos: p.key.TrailingEdge, Kind: RefineCenter, SizeFactor: 1},
	}
}

// Bounds returns the bounding box of the contour.
func (p *Profile) Bounds() r2.Box { return d2.Set(p.pts).Bounds() }

// SignedArea returns the enclosed area, negative for clockwise contours.
func (p *Profile) SignedArea() float64 { return d2.Set(p.pts).SignedArea() }
