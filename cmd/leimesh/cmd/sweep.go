package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kiteworks/leimesh/foam"
	"github.com/kiteworks/leimesh/internal/logging"
	"github.com/kiteworks/leimesh/polar"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	sweepGeometry geometryFlags
	sweepRemesh   bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compute the polar of the case",
	Long: `Mesh the profile if requested, then solve one OpenFOAM case per angle of
attack. Each solved angle is appended to the case polar file, which is reset
first. The case is added to the polar registry and its polar plotted next to
the polar file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("remesh") {
			cfg.Case.Remesh = sweepRemesh
		}
		prof, err := buildProfile(cmd, &sweepGeometry)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		log := logging.Named("sweep")
		if cfg.Case.Remesh {
			if err := writeMesh(cmd, prof, cfg.Paths.Mesh, true); err != nil {
				return err
			}
		}

		csvPath := cfg.PolarPath()
		if err := os.MkdirAll(filepath.Dir(csvPath), 0o755); err != nil {
			return err
		}
		if err := polar.ResetCSV(csvPath); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Paths.Registry), 0o755); err != nil {
			return err
		}
		g := cfg.Geometry
		added, err := polar.Register(cfg.Paths.Registry, polar.Case{
			CSV:      csvPath,
			TubeSize: g.TubeSize,
			Depth:    g.Depth,
			CamberAt: g.CamberAt,
			TEAngle:  g.TEAngle,
			Chord:    cfg.Fluid.Length,
		})
		if err != nil {
			return err
		}
		log.Debug("registry", zap.String("path", cfg.Paths.Registry), zap.Bool("added", added))

		angles, err := foam.Angles(cfg.Sweep.Min, cfg.Sweep.Max, cfg.Sweep.Step)
		if err != nil {
			return err
		}
		s := foam.Sweep{
			Solver:          foam.Solver{Log: logging.Named("foam")},
			Base:            cfg.Paths.BaseCase,
			Mesh:            cfg.Paths.Mesh,
			Root:            cfg.Paths.Work,
			Velocity:        cfg.SolverVelocity(),
			Angles:          angles,
			Parallel:        cfg.Sweep.Parallel,
			ContinueOnError: cfg.Sweep.ContinueOnError,
			OnRow: func(r polar.Row) error {
				return polar.AppendCSV(csvPath, r)
			},
		}
		log.Info("sweep started",
			zap.String("case", cfg.Case.Name),
			zap.Float64s("angles", angles),
			zap.Float64("velocity", s.Velocity),
		)
		rows, sweepErr := s.Run(cmd.Context())
		if len(rows) > 0 {
			pngPath := strings.TrimSuffix(csvPath, ".csv") + ".png"
			if err := polar.SavePNG(pngPath, polar.Series{Label: cfg.Case.Name, Rows: rows}); err != nil {
				log.Warn("plotting polar", zap.Error(err))
			}
			printRows(cmd, rows)
		}
		return sweepErr
	},
}

func printRows(cmd *cobra.Command, rows []polar.Row) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%8s %10s %10s %10s\n", "Alpha", "Cl", "Cd", "Cm")
	for _, r := range rows {
		fmt.Fprintf(w, "%8.2f %10.4f %10.5f %10.4f\n", r.Alpha, r.Cl, r.Cd, r.Cm)
	}
}

func init() {
	sweepGeometry.register(sweepCmd.Flags())
	sweepCmd.Flags().BoolVar(&sweepRemesh, "remesh", true, "regenerate the mesh before solving")
}
