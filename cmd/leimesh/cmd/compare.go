package cmd

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/kiteworks/leimesh/internal/logging"
	"github.com/kiteworks/leimesh/polar"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	compareOut   string
	compareThumb string
	compareSize  uint
)

var compareCmd = &cobra.Command{
	Use:   "compare [polar.csv...]",
	Short: "Plot polars side by side",
	Long: `Plot the polars given as arguments, or every case of the polar registry
when none is given, on the same Cl, Cd and Cm against alpha and Cl against Cd
figure.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cases []polar.Case
		if len(args) == 0 {
			var err error
			cases, err = polar.LoadRegistry(cfg.Paths.Registry)
			if err != nil {
				return err
			}
		}
		for _, path := range args {
			cases = append(cases, polar.Case{CSV: path})
		}
		if len(cases) == 0 {
			return fmt.Errorf("no polar in registry %s", cfg.Paths.Registry)
		}
		series, err := polar.Load(cases)
		if err != nil {
			return err
		}
		img, err := polar.Render(polar.Width, polar.Height, series...)
		if err != nil {
			return err
		}
		if err := writePNG(compareOut, img.Image()); err != nil {
			return err
		}
		log := logging.Named("compare")
		log.Info("polars plotted", zap.Int("cases", len(series)), zap.String("path", compareOut))
		if compareThumb != "" {
			thumb := polar.Thumbnail(img.Image(), compareSize, compareSize)
			if err := writePNG(compareThumb, thumb); err != nil {
				return err
			}
			log.Info("thumbnail written", zap.String("path", compareThumb))
		}
		return nil
	},
}

func writePNG(path string, img image.Image) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(fp, img); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

func init() {
	compareCmd.Flags().StringVarP(&compareOut, "out", "o", "polars.png", "output image")
	compareCmd.Flags().StringVar(&compareThumb, "thumbnail", "", "also write a thumbnail to this path")
	compareCmd.Flags().UintVar(&compareSize, "thumbnail-size", 256, "thumbnail bounding box in pixels")
}
