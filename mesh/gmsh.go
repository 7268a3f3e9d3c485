package mesh

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kiteworks/leimesh"
	"github.com/kiteworks/leimesh/internal/tool"
	"go.uber.org/zap"
)

// Gmsh meshes .geo scripts with the gmsh command line program.
type Gmsh struct {
	Runner tool.Runner
	// Binary is the gmsh executable. Empty selects "gmsh".
	Binary string
	Log    *zap.Logger
}

func (g Gmsh) binary() string {
	if g.Binary == "" {
		return "gmsh"
	}
	return g.Binary
}

func (g Gmsh) log() *zap.Logger {
	if g.Log == nil {
		return zap.NewNop()
	}
	return g.Log
}

// Mesh generates a 3D MSH 2.2 mesh from the script at geoPath and writes it
// to mshPath.
func (g Gmsh) Mesh(ctx context.Context, geoPath, mshPath string) error {
	runner := g.Runner
	if runner == nil {
		runner = tool.Exec{Log: g.Log}
	}
	geoAbs, err := filepath.Abs(geoPath)
	if err != nil {
		return err
	}
	mshAbs, err := filepath.Abs(mshPath)
	if err != nil {
		return err
	}
	_, err = runner.Run(ctx, filepath.Dir(geoAbs), g.binary(), geoAbs, "-3", "-format", "msh22", "-o", mshAbs)
	if err != nil {
		return fmt.Errorf("meshing %s: %w", geoPath, err)
	}
	g.log().Info("mesh written", zap.String("path", mshPath))
	return nil
}

// Generate describes prof to a new script, writes it next to mshPath with a
// .geo extension and meshes it.
func (g Gmsh) Generate(ctx context.Context, prof *leimesh.Profile, o Options, mshPath string) error {
	script := NewGeoScript()
	groups, err := Describe(script, prof, o)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(mshPath), 0o755); err != nil {
		return err
	}
	geoPath := mshPath[:len(mshPath)-len(filepath.Ext(mshPath))] + ".geo"
	if err := script.Save(geoPath); err != nil {
		return err
	}
	g.log().Debug("geometry script written",
		zap.String("path", geoPath),
		zap.Int("airfoilCurves", len(groups.Airfoil)),
		zap.Int("profilePoints", prof.Len()),
	)
	return g.Mesh(ctx, geoPath, mshPath)
}
