package cmd

import (
	"fmt"

	"github.com/kiteworks/leimesh"
	"github.com/spf13/cobra"
)

var blCmd = &cobra.Command{
	Use:   "bl",
	Short: "Print the boundary layer sizing of the case",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cfg.Flow()
		sized, err := leimesh.SizeBoundaryLayer(f)
		if err != nil {
			return err
		}
		o, err := cfg.MeshOptions()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Reynolds number      %.6g\n", f.Reynolds())
		fmt.Fprintf(w, "solver velocity      %.6g m/s\n", cfg.SolverVelocity())
		fmt.Fprintf(w, "first cell height    %.6g\n", sized.FirstCellHeight)
		if o.BoundaryLayer.FirstCellHeight != sized.FirstCellHeight {
			fmt.Fprintf(w, "  overridden to      %.6g\n", o.BoundaryLayer.FirstCellHeight)
		}
		fmt.Fprintf(w, "layer thickness      %.6g\n", o.BoundaryLayer.Thickness)
		fmt.Fprintf(w, "growth ratio         %.6g\n", o.BoundaryLayer.Ratio)
		return nil
	},
}
