package polar

import (
	"errors"
	"image"
	"io"
	"os"

	"github.com/nfnt/resize"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Series is a labelled polar.
type Series struct {
	Label string
	Rows  []Row
}

// Default figure size.
const (
	Width  = 12 * vg.Inch
	Height = 10 * vg.Inch
)

type axis struct {
	name string
	get  func(Row) float64
}

var (
	alphaAxis = axis{"Alpha (degrees)", func(r Row) float64 { return r.Alpha }}
	clAxis    = axis{"Cl", func(r Row) float64 { return r.Cl }}
	cdAxis    = axis{"Cd", func(r Row) float64 { return r.Cd }}
	cmAxis    = axis{"Cm", func(r Row) float64 { return r.Cm }}
)

// Plots returns the four polar plots of the series in reading order:
// Cl, Cd and Cm against alpha, then Cl against Cd.
func Plots(series ...Series) ([]*plot.Plot, error) {
	if len(series) == 0 {
		return nil, errors.New("no polar to plot")
	}
	panels := [4][2]axis{
		{alphaAxis, clAxis},
		{alphaAxis, cdAxis},
		{alphaAxis, cmAxis},
		{cdAxis, clAxis},
	}
	plots := make([]*plot.Plot, len(panels))
	for i, panel := range panels {
		x, y := panel[0], panel[1]
		p := plot.New()
		p.Title.Text = y.name + " vs " + shortName(x)
		p.X.Label.Text = x.name
		p.Y.Label.Text = y.name
		p.Add(plotter.NewGrid())
		var lines []interface{}
		for _, s := range series {
			pts := make(plotter.XYs, len(s.Rows))
			for j, r := range s.Rows {
				pts[j].X = x.get(r)
				pts[j].Y = y.get(r)
			}
			lines = append(lines, s.Label, pts)
		}
		if err := plotutil.AddLinePoints(p, lines...); err != nil {
			return nil, err
		}
		plots[i] = p
	}
	return plots, nil
}

func shortName(a axis) string {
	if a.name == alphaAxis.name {
		return "Alpha"
	}
	return a.name
}

// Render draws the 2x2 polar figure of the series.
func Render(w, h vg.Length, series ...Series) (*vgimg.Canvas, error) {
	plots, err := Plots(series...)
	if err != nil {
		return nil, err
	}
	img := vgimg.New(w, h)
	dc := draw.New(img)
	t := draw.Tiles{
		Rows: 2,
		Cols: 2,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	grid := [][]*plot.Plot{plots[:2], plots[2:]}
	canvases := plot.Align(grid, t, dc)
	for j := range grid {
		for i, p := range grid[j] {
			p.Draw(canvases[j][i])
		}
	}
	return img, nil
}

// WritePNG writes the 2x2 polar figure of the series to w as PNG.
func WritePNG(w io.Writer, width, height vg.Length, series ...Series) error {
	img, err := Render(width, height, series...)
	if err != nil {
		return err
	}
	_, err = vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	return err
}

// SavePNG writes the 2x2 polar figure of the series to a PNG file.
func SavePNG(path string, series ...Series) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := WritePNG(fp, Width, Height, series...); err != nil {
		return err
	}
	return fp.Close()
}

// Thumbnail downsamples img to fit within maxWidth by maxHeight pixels,
// keeping its aspect ratio.
func Thumbnail(img image.Image, maxWidth, maxHeight uint) image.Image {
	return resize.Thumbnail(maxWidth, maxHeight, img, resize.Bilinear)
}

// Load reads the polar of every registered case.
func Load(cases []Case) ([]Series, error) {
	series := make([]Series, 0, len(cases))
	for _, c := range cases {
		rows, err := LoadCSV(c.CSV)
		if err != nil {
			return nil, err
		}
		SortByAlpha(rows)
		series = append(series, Series{Label: c.Name(), Rows: rows})
	}
	return series, nil
}
