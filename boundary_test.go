package leimesh

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	airDensity   = 1.225
	airViscosity = 1.8e-5
)

func TestReynolds(t *testing.T) {
	nu := airViscosity / airDensity
	re := Reynolds(20, 1, nu)
	if !scalar.EqualWithinRel(re, 1.3611e6, 1e-4) {
		t.Errorf("got Re=%g, want about 1.3611e6", re)
	}
}

func TestEquivalentVelocityRoundTrip(t *testing.T) {
	const tol = 1e-12
	for _, re := range []float64{1e3, 2.5e5, 1.3611e6, 4e7} {
		for _, nu := range []float64{1e-6, 1.47e-5, 1e-3} {
			u := EquivalentVelocity(re, nu)
			if got := Reynolds(u, 1, nu); !scalar.EqualWithinRel(got, re, tol) {
				t.Errorf("re=%g nu=%g: unit chord round trip gave %g", re, nu, got)
			}
			// The chord is not part of EquivalentVelocity.
			for _, l := range []float64{0.5, 2, 3.7} {
				if got := Reynolds(u, l, nu); !scalar.EqualWithinRel(got, re*l, tol) {
					t.Errorf("re=%g nu=%g l=%g: got %g, want %g", re, nu, l, got, re*l)
				}
			}
		}
	}
}

func TestFirstCellHeight(t *testing.T) {
	nu := airViscosity / airDensity
	re := Reynolds(20, 1, nu)
	yh, err := FirstCellHeight(re, 20, airDensity, nu, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !(yh > 0 && yh < 1e-3) {
		t.Errorf("first cell height %g outside (0, 1e-3)", yh)
	}
	cf := 0.0576 * math.Pow(re, -0.2)
	want := nu / math.Sqrt(0.5*cf*20*20)
	if !scalar.EqualWithinRel(yh, want, 1e-12) {
		t.Errorf("got %g, want %g", yh, want)
	}
	yh5, err := FirstCellHeight(re, 20, airDensity, nu, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinRel(yh5, 5*yh, 1e-12) {
		t.Errorf("first cell height not linear in y+: %g vs 5*%g", yh5, yh)
	}
}

func TestTrailingEdgeLayerThickness(t *testing.T) {
	th, err := TrailingEdgeLayerThickness(1.3611e6)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinRel(th, 0.02254, 1e-3) {
		t.Errorf("got thickness %g, want about 0.02254", th)
	}
	thin, _ := TrailingEdgeLayerThickness(1e7)
	if thin >= th {
		t.Errorf("thickness should decrease with Reynolds number: %g >= %g", thin, th)
	}
}

func TestBoundaryLayerInvalid(t *testing.T) {
	for _, re := range []float64{0, -1e5, math.NaN(), math.Inf(1)} {
		if _, err := TrailingEdgeLayerThickness(re); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("thickness re=%g: expected invalid parameter error, got %v", re, err)
		}
		if _, err := FirstCellHeight(re, 20, airDensity, 1.5e-5, 1); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("first cell re=%g: expected invalid parameter error, got %v", re, err)
		}
	}
	if _, err := FirstCellHeight(1e6, 0, airDensity, 1.5e-5, 1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("zero velocity: expected invalid parameter error, got %v", err)
	}
}

func TestSizeBoundaryLayer(t *testing.T) {
	f := Flow{Velocity: 20, Length: 1, Density: airDensity, Viscosity: airViscosity}
	bl, err := SizeBoundaryLayer(f)
	if err != nil {
		t.Fatal(err)
	}
	nu := f.KinematicViscosity()
	yh, _ := FirstCellHeight(f.Reynolds(), 20, airDensity, nu, 1)
	if !scalar.EqualWithinRel(bl.FirstCellHeight, yh, 1e-9) {
		t.Errorf("first cell %g, want %g", bl.FirstCellHeight, yh)
	}
	th, _ := TrailingEdgeLayerThickness(f.Reynolds())
	if bl.Thickness != th {
		t.Errorf("thickness %g, want %g", bl.Thickness, th)
	}
	if bl.Ratio != BoundaryLayerRatio {
		t.Errorf("ratio %g, want %g", bl.Ratio, BoundaryLayerRatio)
	}
	if _, err := SizeBoundaryLayer(Flow{Velocity: 20, Length: 1}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("zero density: expected invalid parameter error, got %v", err)
	}
}
