// Package config loads the case file describing a polar study: the profile
// geometry, the fluid domain and mesh sizes, the flow and the sweep of
// angles of attack.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kiteworks/leimesh"
	"github.com/kiteworks/leimesh/internal/logging"
	"github.com/kiteworks/leimesh/mesh"
	"gopkg.in/yaml.v3"
)

// Config is a study case.
type Config struct {
	Case     CaseConfig     `yaml:"case"`
	Geometry GeometryConfig `yaml:"geometry"`
	Domain   DomainConfig   `yaml:"domain"`
	Mesh     MeshConfig     `yaml:"mesh"`
	Fluid    FluidConfig    `yaml:"fluid"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Paths    PathsConfig    `yaml:"paths"`
	Logging  logging.Config `yaml:"logging"`
}

// CaseConfig names the study.
type CaseConfig struct {
	Name string `yaml:"name"`
	// Remesh regenerates the mesh before the sweep.
	Remesh bool `yaml:"remesh"`
}

// GeometryConfig holds the profile parameters, in percent of the chord
// unless stated otherwise.
type GeometryConfig struct {
	Chord     float64 `yaml:"chord"`      // m, meshing chord
	Depth     float64 `yaml:"depth"`      // max camber height
	TubeSize  float64 `yaml:"tube_size"`  // leading edge tube diameter
	CamberAt  float64 `yaml:"camber_at"`  // x of max camber
	SeamAngle float64 `yaml:"seam_angle"` // degrees
	TEAngle   float64 `yaml:"te_angle"`   // degrees
	Points    int     `yaml:"points"`
}

// DomainConfig is the far field extent.
type DomainConfig struct {
	XMax float64 `yaml:"xmax"` // downstream extent
	YMax float64 `yaml:"ymax"` // half height
}

// MeshConfig holds the element sizes.
type MeshConfig struct {
	FarSize float64 `yaml:"lc"`
	// ProfileSize defaults to FarSize/150 when zero.
	ProfileSize float64 `yaml:"lc_profile"`
	// FirstCellHeight overrides the boundary layer first cell height
	// computed from the flow when positive.
	FirstCellHeight float64 `yaml:"first_cell_height"`
	YPlus           float64 `yaml:"y_plus"`
}

// FluidConfig describes the flow.
type FluidConfig struct {
	Velocity  float64 `yaml:"velocity"`  // m/s, apparent wind
	Length    float64 `yaml:"length"`    // m, true chord of the kite
	Density   float64 `yaml:"density"`   // kg/m^3
	Viscosity float64 `yaml:"viscosity"` // Pa.s
}

// SweepConfig is the range of angles of attack in degrees. Max is excluded.
type SweepConfig struct {
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
	Step     float64 `yaml:"step"`
	Parallel int     `yaml:"parallel"`
	// ContinueOnError keeps solving after an angle fails.
	ContinueOnError bool `yaml:"continue_on_error"`
}

// PathsConfig locates the inputs and outputs of the study.
type PathsConfig struct {
	BaseCase string `yaml:"base_case"`
	Work     string `yaml:"work"`
	Mesh     string `yaml:"mesh"`
	Results  string `yaml:"results"`
	Registry string `yaml:"registry"`
	Gmsh     string `yaml:"gmsh"`
}

// Default returns the reference kite study.
func Default() *Config {
	return &Config{
		Case: CaseConfig{Name: "default-kite", Remesh: true},
		Geometry: GeometryConfig{
			Chord:     1,
			Depth:     9,
			TubeSize:  9,
			CamberAt:  25,
			SeamAngle: 35,
			TEAngle:   7,
			Points:    100,
		},
		Domain: DomainConfig{XMax: 40, YMax: 30},
		Mesh: MeshConfig{
			FarSize:         0.6,
			FirstCellHeight: 1e-4,
			YPlus:           1,
		},
		Fluid: FluidConfig{
			Velocity:  20,
			Length:    1,
			Density:   1.225,
			Viscosity: 1.8e-5,
		},
		Sweep: SweepConfig{Min: 0, Max: 17, Step: 2, Parallel: 1},
		Paths: PathsConfig{
			BaseCase: "openFoam/Cas_de_base",
			Work:     "openFoam",
			Mesh:     "data/mesh.msh",
			Results:  "results",
			Registry: "data/polars_list.txt",
			Gmsh:     "gmsh",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads the case file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Params returns the profile parameters.
func (c *Config) Params() leimesh.Params {
	p := leimesh.DefaultParams()
	g := c.Geometry
	p.Chord = g.Chord
	p.Depth = g.Depth
	p.TubeSize = g.TubeSize
	p.CamberAt = g.CamberAt
	p.SeamAngle = g.SeamAngle
	p.TEAngle = g.TEAngle
	p.Points = g.Points
	return p
}

// Flow returns the flow around the true chord.
func (c *Config) Flow() leimesh.Flow {
	return leimesh.Flow{
		Velocity:  c.Fluid.Velocity,
		Length:    c.Fluid.Length,
		Density:   c.Fluid.Density,
		Viscosity: c.Fluid.Viscosity,
		YPlus:     c.Mesh.YPlus,
	}
}

// SolverVelocity is the freestream speed that reproduces the Reynolds number
// of the true chord on the meshed chord.
func (c *Config) SolverVelocity() float64 {
	f := c.Flow()
	return leimesh.EquivalentVelocity(f.Reynolds(), f.KinematicViscosity()) / c.Geometry.Chord
}

// MeshOptions returns the mesh description options, with the boundary
// layer sized for the flow.
func (c *Config) MeshOptions() (mesh.Options, error) {
	bl, err := leimesh.SizeBoundaryLayer(c.Flow())
	if err != nil {
		return mesh.Options{}, err
	}
	if c.Mesh.FirstCellHeight > 0 {
		bl.FirstCellHeight = c.Mesh.FirstCellHeight
	}
	o := mesh.Options{
		Domain:        mesh.DefaultDomain(),
		ProfileSize:   c.Mesh.ProfileSize,
		FarSize:       c.Mesh.FarSize,
		BoundaryLayer: bl,
	}
	o.Domain.XMax = c.Domain.XMax
	o.Domain.YMax = c.Domain.YMax
	if o.ProfileSize == 0 {
		o.ProfileSize = c.Mesh.FarSize / 150
	}
	return o, nil
}

// PolarPath is the polar CSV file of the case.
func (c *Config) PolarPath() string {
	return filepath.Join(c.Paths.Results, c.Case.Name+".csv")
}

// Validate reports every problem found in the configuration.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(c.Case.Name != "", "case.name is empty")
	if err := c.Params().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("geometry: %w", err))
	}
	check(c.Domain.XMax > c.Geometry.Chord, "domain.xmax %g must exceed the chord", c.Domain.XMax)
	check(c.Domain.YMax > 0, "domain.ymax %g must be positive", c.Domain.YMax)
	check(c.Mesh.FarSize > 0, "mesh.lc %g must be positive", c.Mesh.FarSize)
	check(c.Mesh.ProfileSize >= 0, "mesh.lc_profile %g must not be negative", c.Mesh.ProfileSize)
	check(c.Mesh.FirstCellHeight >= 0, "mesh.first_cell_height %g must not be negative", c.Mesh.FirstCellHeight)
	if _, err := leimesh.SizeBoundaryLayer(c.Flow()); err != nil {
		errs = append(errs, fmt.Errorf("fluid: %w", err))
	}
	check(c.Sweep.Step > 0, "sweep.step %g must be positive", c.Sweep.Step)
	check(c.Sweep.Max > c.Sweep.Min, "sweep range [%g, %g) is empty", c.Sweep.Min, c.Sweep.Max)
	check(c.Paths.Results != "", "paths.results is empty")
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	return errors.Join(errs...)
}
