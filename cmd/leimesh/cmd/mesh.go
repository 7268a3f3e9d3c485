package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kiteworks/leimesh"
	"github.com/kiteworks/leimesh/internal/logging"
	"github.com/kiteworks/leimesh/mesh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	meshGeometry geometryFlags
	meshOut      string
	meshRun      bool
)

var meshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Describe the fluid domain to gmsh",
	Long: `Write the gmsh geometry script of the profile and its fluid domain, with
the boundary layer sized for the case flow. With --run, gmsh is invoked to
produce the 3D mesh in MSH 2.2 format.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prof, err := buildProfile(cmd, &meshGeometry)
		if err != nil {
			return err
		}
		out := meshOut
		if out == "" {
			out = cfg.Paths.Mesh
		}
		return writeMesh(cmd, prof, out, meshRun)
	},
}

// writeMesh writes the geometry script next to mshPath and meshes it if
// run is set.
func writeMesh(cmd *cobra.Command, prof *leimesh.Profile, mshPath string, run bool) error {
	o, err := cfg.MeshOptions()
	if err != nil {
		return err
	}
	log := logging.Named("mesh")
	log.Debug("mesh options",
		zap.Float64("profileSize", o.ProfileSize),
		zap.Float64("farSize", o.FarSize),
		zap.Float64("firstCell", o.BoundaryLayer.FirstCellHeight),
		zap.Float64("layerThickness", o.BoundaryLayer.Thickness),
	)
	if run {
		g := mesh.Gmsh{Binary: cfg.Paths.Gmsh, Log: log}
		return g.Generate(cmd.Context(), prof, o, mshPath)
	}
	script := mesh.NewGeoScript()
	if _, err := mesh.Describe(script, prof, o); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(mshPath), 0o755); err != nil {
		return err
	}
	geoPath := strings.TrimSuffix(mshPath, filepath.Ext(mshPath)) + ".geo"
	if err := script.Save(geoPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "geometry script written to %s\n", geoPath)
	return nil
}

func init() {
	meshGeometry.register(meshCmd.Flags())
	meshCmd.Flags().StringVarP(&meshOut, "out", "o", "", "mesh file (default is paths.mesh of the case)")
	meshCmd.Flags().BoolVar(&meshRun, "run", false, "run gmsh on the geometry script")
}
