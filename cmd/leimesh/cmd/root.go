// Package cmd provides the CLI commands for leimesh.
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/kiteworks/leimesh/internal/config"
	"github.com/kiteworks/leimesh/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	// cfg is the study case loaded before any command runs.
	cfg = config.Default()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "leimesh",
	Short: "Mesh LEI kite airfoils and compute their polars",
	Long: `leimesh builds Leading Edge Inflatable kite airfoil profiles from a
handful of shape parameters, meshes the surrounding fluid domain with gmsh
and runs an OpenFOAM sweep over angles of attack to produce polars.

Examples:
  leimesh profile --out data
  leimesh mesh --config case.yaml --run
  leimesh sweep --config case.yaml
  leimesh compare --out polars.png`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the CLI. An interrupt cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer logging.Sync()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "case file (default is the reference kite study)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(meshCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(blCmd)
}

func initConfig() error {
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return logging.Initialize(cfg.Logging)
}
