package leimesh

import "math"

// Boundary layer sizing for the mesher. The correlations are the flat
// plate turbulent ones and assume a unit chord.

const (
	// BoundaryLayerRatio is the growth ratio between successive boundary
	// layer cells.
	BoundaryLayerRatio = 1.05
	// ExtrusionDepth is the spanwise extrusion of the 2D mesh.
	ExtrusionDepth = 1.0
)

// Reynolds returns the Reynolds number for velocity u, length l and
// kinematic viscosity nu.
func Reynolds(u, l, nu float64) float64 {
	return u * l / nu
}

// EquivalentVelocity returns the velocity that gives Reynolds number re on a
// unit chord. The chord is not a parameter, so
// Reynolds(EquivalentVelocity(re, nu), l, nu) == re*l.
func EquivalentVelocity(re, nu float64) float64 {
	return re * nu
}

// FirstCellHeight returns the wall normal height of the first cell needed to
// reach yPlus, from the skin friction estimate Cf = 0.0576·Re^(-1/5).
func FirstCellHeight(re, u, rho, nu, yPlus float64) (float64, error) {
	if err := positive("reynolds number", re); err != nil {
		return 0, err
	}
	for _, v := range []struct {
		name string
		v    float64
	}{{"velocity", u}, {"density", rho}, {"kinematic viscosity", nu}, {"y+", yPlus}} {
		if err := positive(v.name, v.v); err != nil {
			return 0, err
		}
	}
	cf := 0.0576 * math.Pow(re, -1./5)
	tau := 0.5 * rho * cf * u * u
	utau := math.Sqrt(tau / rho)
	return yPlus * nu / utau, nil
}

// TrailingEdgeLayerThickness returns the turbulent boundary layer thickness
// at the trailing edge of a unit chord, 0.38·Re^(-1/5).
func TrailingEdgeLayerThickness(re float64) (float64, error) {
	if err := positive("reynolds number", re); err != nil {
		return 0, err
	}
	return 0.38 * math.Pow(re, -1./5), nil
}

// Flow holds the free stream conditions used to size the boundary layer.
type Flow struct {
	Velocity  float64 // free stream velocity
	Length    float64 // reference length (chord)
	Density   float64
	Viscosity float64 // dynamic viscosity
	YPlus     float64 // target y+ of the first cell. Zero selects 1.
}

// KinematicViscosity returns Viscosity/Density.
func (f Flow) KinematicViscosity() float64 { return f.Viscosity / f.Density }

// Reynolds returns the Reynolds number of the flow.
func (f Flow) Reynolds() float64 {
	return Reynolds(f.Velocity, f.Length, f.KinematicViscosity())
}

// BoundaryLayer holds the mesher inputs for the boundary layer field.
type BoundaryLayer struct {
	FirstCellHeight float64
	Thickness       float64
	Ratio           float64
}

// SizeBoundaryLayer computes the first cell height and trailing edge layer
// thickness for f. The first cell is sized for the unit chord equivalent
// velocity at the flow Reynolds number.
func SizeBoundaryLayer(f Flow) (BoundaryLayer, error) {
	if err := positive("density", f.Density); err != nil {
		return BoundaryLayer{}, err
	}
	if err := positive("viscosity", f.Viscosity); err != nil {
		return BoundaryLayer{}, err
	}
	yPlus := f.YPlus
	if yPlus == 0 {
		yPlus = 1
	}
	nu := f.KinematicViscosity()
	re := f.Reynolds()
	yh, err := FirstCellHeight(re, EquivalentVelocity(re, nu), f.Density, nu, yPlus)
	if err != nil {
		return BoundaryLayer{}, err
	}
	th, err := TrailingEdgeLayerThickness(re)
	if err != nil {
		return BoundaryLayer{}, err
	}
	return BoundaryLayer{FirstCellHeight: yh, Thickness: th, Ratio: BoundaryLayerRatio}, nil
}

func positive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return invalid(name, v, "must be positive and finite")
	}
	return nil
}
