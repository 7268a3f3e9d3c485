// Package mesh describes an LEI profile and its fluid domain to an external
// mesher. The geometry is handed over through the Exporter interface, which
// returns typed handles for every entity it creates.
package mesh

import (
	"errors"
	"fmt"

	"github.com/kiteworks/leimesh"
	"github.com/kiteworks/leimesh/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Handles to entities created by an Exporter. Their values are only
// meaningful to the Exporter that returned them.
type (
	PointTag   int
	CurveTag   int
	LoopTag    int
	SurfaceTag int
	VolumeTag  int
	FieldTag   int
)

// Extrusion is the result of extruding a plane surface one layer deep.
type Extrusion struct {
	Top    SurfaceTag
	Volume VolumeTag
	// Lateral holds the side surfaces, one per boundary curve of the
	// extruded surface in the order the curves were given to its loops.
	Lateral []SurfaceTag
}

// Exporter receives a geometry description.
type Exporter interface {
	Point(p r2.Vec, size float64) PointTag
	Line(start, end PointTag) CurveTag
	Spline(pts ...PointTag) CurveTag
	CircleArc(start, center, end PointTag) CurveTag
	CurveLoop(curves ...CurveTag) LoopTag
	// PlaneSurface creates a surface bounded by the first loop with the
	// remaining loops as holes.
	PlaneSurface(loops ...LoopTag) SurfaceTag
	BoundaryLayer(curves []CurveTag, bl leimesh.BoundaryLayer) FieldTag
	Extrude(s SurfaceTag, depth float64) Extrusion
	PhysicalSurface(name string, s ...SurfaceTag)
	PhysicalVolume(name string, v ...VolumeTag)
}

// Physical group names shared with the solver case.
const (
	GroupInlet   = "inlet"
	GroupOutlet  = "outlet"
	GroupSide    = "side"
	GroupAirfoil = "airfoil"
	GroupFluid   = "FLUID"
)

// Domain is the far field box around the profile.
type Domain struct {
	Upstream float64 // x of the inlet arc ends, negative
	XMax     float64 // downstream extent
	YMax     float64 // half height
}

// DefaultDomain returns the domain used for unit chord studies.
func DefaultDomain() Domain {
	return Domain{Upstream: -0.5, XMax: 40, YMax: 30}
}

// Options control the mesh description.
type Options struct {
	Domain        Domain
	ProfileSize   float64 // target element size along the profile
	FarSize       float64 // target element size on the far field
	BoundaryLayer leimesh.BoundaryLayer
	Depth         float64 // extrusion depth. Zero selects leimesh.ExtrusionDepth.
}

func (o Options) validate(prof *leimesh.Profile) error {
	switch {
	case !(o.ProfileSize > 0):
		return fmt.Errorf("profile element size must be positive, got %g", o.ProfileSize)
	case !(o.FarSize > 0):
		return fmt.Errorf("far field element size must be positive, got %g", o.FarSize)
	case !(o.Domain.Upstream < 0):
		return fmt.Errorf("domain upstream extent must be negative, got %g", o.Domain.Upstream)
	case !(o.Domain.YMax > -o.Domain.Upstream):
		return errors.New("domain half height must exceed the upstream extent")
	case !(o.BoundaryLayer.FirstCellHeight > 0 && o.BoundaryLayer.Thickness > 0):
		return errors.New("boundary layer first cell height and thickness must be positive")
	}
	bb := prof.Bounds()
	if bb.Max.X >= o.Domain.XMax || bb.Max.Y >= o.Domain.YMax || bb.Min.Y <= -o.Domain.YMax || bb.Min.X <= o.Domain.Upstream {
		return fmt.Errorf("profile bounds %v exceed domain %+v", bb, o.Domain)
	}
	return nil
}

// Groups are the physical groups created by Describe.
type Groups struct {
	Airfoil []CurveTag
	Inlet   []SurfaceTag
	Outlet  []SurfaceTag
	Side    []SurfaceTag
	Wall    []SurfaceTag
	Fluid   VolumeTag
}

// Describe hands the profile, its trailing edge rounding and the far field
// domain to e. The airfoil is described by an upper spline, three arcs
// around the trailing edge through its rounding anchors, and a lower
// spline closing on the first profile point.
func Describe(e Exporter, prof *leimesh.Profile, o Options) (Groups, error) {
	if err := o.validate(prof); err != nil {
		return Groups{}, err
	}
	depth := o.Depth
	if depth == 0 {
		depth = leimesh.ExtrusionDepth
	}
	k := prof.KeyPoints()
	chord := prof.Params().Chord
	tol := 1e-9 * chord

	upper := d2.Set(prof.Upper()).Distinct(tol)
	lower := d2.Set(prof.Lower()).Distinct(tol)
	if d2.EqualWithin(lower[len(lower)-1], upper[0], tol) {
		lower = lower[:len(lower)-1]
	}

	upperTags := make([]PointTag, len(upper))
	for i, p := range upper {
		upperTags[i] = e.Point(p, o.ProfileSize)
	}
	var center, roundUpper, roundLower PointTag
	for _, rp := range prof.RefinePoints() {
		tag := e.Point(rp.Pos, o.ProfileSize*rp.SizeFactor)
		switch {
		case rp.Kind == leimesh.RefineCenter:
			center = tag
		case rp.Pos == k.TERoundUpper:
			roundUpper = tag
		default:
			roundLower = tag
		}
	}
	lowerTags := make([]PointTag, 0, len(lower)+1)
	for _, p := range lower {
		lowerTags = append(lowerTags, e.Point(p, o.ProfileSize))
	}
	lowerTags = append(lowerTags, upperTags[0])

	airfoil := []CurveTag{
		e.Spline(upperTags...),
		e.CircleArc(upperTags[len(upperTags)-1], center, roundUpper),
		e.CircleArc(roundUpper, center, roundLower),
		e.CircleArc(roundLower, center, lowerTags[0]),
		e.Spline(lowerTags...),
	}
	airfoilLoop := e.CurveLoop(airfoil...)

	dom := o.Domain
	topLeft := e.Point(r2.Vec{X: dom.Upstream, Y: dom.YMax}, o.FarSize)
	bottomLeft := e.Point(r2.Vec{X: dom.Upstream, Y: -dom.YMax}, o.FarSize)
	bottomRight := e.Point(r2.Vec{X: dom.XMax, Y: -dom.YMax}, o.FarSize)
	topRight := e.Point(r2.Vec{X: dom.XMax, Y: dom.YMax}, o.FarSize)
	origin := e.Point(r2.Vec{}, o.ProfileSize)
	inletArc := e.CircleArc(topLeft, origin, bottomLeft)
	bottom := e.Line(bottomLeft, bottomRight)
	outlet := e.Line(bottomRight, topRight)
	top := e.Line(topRight, topLeft)
	farLoop := e.CurveLoop(inletArc, bottom, outlet, top)

	surface := e.PlaneSurface(farLoop, airfoilLoop)
	e.BoundaryLayer(airfoil, o.BoundaryLayer)
	ext := e.Extrude(surface, depth)
	if len(ext.Lateral) != 4+len(airfoil) {
		return Groups{}, fmt.Errorf("extrusion returned %d lateral surfaces, want %d", len(ext.Lateral), 4+len(airfoil))
	}
	// Lateral surfaces follow the loop order: far field first.
	g := Groups{
		Airfoil: airfoil,
		Inlet:   []SurfaceTag{ext.Lateral[0], ext.Lateral[1], ext.Lateral[3]},
		Outlet:  []SurfaceTag{ext.Lateral[2]},
		Side:    []SurfaceTag{surface, ext.Top},
		Wall:    ext.Lateral[4:],
		Fluid:   ext.Volume,
	}
	e.PhysicalSurface(GroupInlet, g.Inlet...)
	e.PhysicalSurface(GroupOutlet, g.Outlet...)
	e.PhysicalSurface(GroupSide, g.Side...)
	e.PhysicalSurface(GroupAirfoil, g.Wall...)
	e.PhysicalVolume(GroupFluid, g.Fluid)
	return g, nil
}
