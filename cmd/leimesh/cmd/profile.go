package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kiteworks/leimesh"
	"github.com/kiteworks/leimesh/internal/config"
	"github.com/kiteworks/leimesh/internal/logging"
	"github.com/kiteworks/leimesh/mesh"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// geometryFlags override the geometry section of the case file.
type geometryFlags struct {
	g config.GeometryConfig
}

func (f *geometryFlags) register(fs *pflag.FlagSet) {
	d := config.Default().Geometry
	fs.Float64Var(&f.g.Chord, "chord", d.Chord, "meshing chord length")
	fs.Float64Var(&f.g.Depth, "depth", d.Depth, "max camber height in % of the chord")
	fs.Float64Var(&f.g.TubeSize, "tube", d.TubeSize, "leading edge tube diameter in % of the chord")
	fs.Float64Var(&f.g.CamberAt, "at", d.CamberAt, "x position of the max camber in % of the chord")
	fs.Float64Var(&f.g.SeamAngle, "seam", d.SeamAngle, "seam angle in degrees")
	fs.Float64Var(&f.g.TEAngle, "te", d.TEAngle, "trailing edge angle in degrees")
	fs.IntVar(&f.g.Points, "points", d.Points, "number of points defining the profile")
}

// apply copies the flags set on the command line into c.
func (f *geometryFlags) apply(fs *pflag.FlagSet, c *config.Config) {
	set := map[string]func(){
		"chord":  func() { c.Geometry.Chord = f.g.Chord },
		"depth":  func() { c.Geometry.Depth = f.g.Depth },
		"tube":   func() { c.Geometry.TubeSize = f.g.TubeSize },
		"at":     func() { c.Geometry.CamberAt = f.g.CamberAt },
		"seam":   func() { c.Geometry.SeamAngle = f.g.SeamAngle },
		"te":     func() { c.Geometry.TEAngle = f.g.TEAngle },
		"points": func() { c.Geometry.Points = f.g.Points },
	}
	for name, fn := range set {
		if fs.Changed(name) {
			fn()
		}
	}
}

// buildProfile applies the geometry flags and builds the profile.
func buildProfile(cmd *cobra.Command, flags *geometryFlags) (*leimesh.Profile, error) {
	flags.apply(cmd.Flags(), cfg)
	prof, err := leimesh.Build(cfg.Params())
	if err != nil {
		return nil, fmt.Errorf("building profile: %w", err)
	}
	return prof, nil
}

var (
	profileGeometry geometryFlags
	profileOut      string
	profileFormats  []string
)

var profileExporters = map[string]func(path string, prof *leimesh.Profile) error{
	"csv": mesh.CreateContourCSV,
	"png": mesh.SaveProfilePlot,
	"svg": mesh.SaveProfilePlot,
	"dxf": mesh.CreateDXF,
	"stl": func(path string, prof *leimesh.Profile) error {
		return mesh.CreateSTL(path, prof, leimesh.ExtrusionDepth*prof.Params().Chord)
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile [case.yaml...]",
	Short: "Write the profile contour",
	Long: `Build the profile from the case geometry and write it in the requested
formats: csv (x,y,z points), png or svg (plot), dxf (closed polyline) and stl
(extruded solid). Case files given as arguments are built in parallel and
written under their own case names instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(profileOut, 0o755); err != nil {
			return err
		}
		if len(args) > 0 {
			return writeDesigns(cmd, args)
		}
		prof, err := buildProfile(cmd, &profileGeometry)
		if err != nil {
			return err
		}
		if err := exportProfile(cfg.Case.Name, prof); err != nil {
			return err
		}
		k := prof.KeyPoints()
		fmt.Fprintf(cmd.OutOrStdout(), "%d points, camber (%.4f, %.4f), trailing edge (%.4f, %.4f)\n",
			prof.Len(), k.Camber.X, k.Camber.Y, k.TrailingEdge.X, k.TrailingEdge.Y)
		return nil
	},
}

// writeDesigns builds and exports the profile of every case file.
func writeDesigns(cmd *cobra.Command, paths []string) error {
	names := make([]string, len(paths))
	designs := make([]leimesh.Params, len(paths))
	for i, path := range paths {
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		names[i] = c.Case.Name
		designs[i] = c.Params()
	}
	profiles, err := leimesh.BuildAll(cmd.Context(), designs, runtime.NumCPU())
	if err != nil {
		return err
	}
	for i, prof := range profiles {
		if err := exportProfile(names[i], prof); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d points\n", names[i], prof.Len())
	}
	return nil
}

func exportProfile(name string, prof *leimesh.Profile) error {
	log := logging.Named("profile")
	for _, format := range profileFormats {
		format = strings.ToLower(strings.TrimSpace(format))
		export, ok := profileExporters[format]
		if !ok {
			return fmt.Errorf("unknown profile format %q", format)
		}
		path := filepath.Join(profileOut, name+"."+format)
		if err := export(path, prof); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Info("profile written", zap.String("path", path))
	}
	return nil
}

func init() {
	profileGeometry.register(profileCmd.Flags())
	profileCmd.Flags().StringVarP(&profileOut, "out", "o", "data", "output directory")
	profileCmd.Flags().StringSliceVar(&profileFormats, "format", []string{"csv", "png"}, "output formats: csv, png, svg, dxf, stl")
}
