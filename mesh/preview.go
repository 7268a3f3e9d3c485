package mesh

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/kiteworks/leimesh"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// WriteContourCSV writes the distinct contour points as x,y,z rows with z
// zero, the layout CAD point importers expect.
func WriteContourCSV(w io.Writer, prof *leimesh.Profile) error {
	writer := csv.NewWriter(w)
	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, p := range prof.Distinct() {
		if err := writer.Write([]string{format(p.X), format(p.Y), "0"}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ProfilePlot plots the upper and lower surfaces of the profile with equal
// axis scales.
func ProfilePlot(prof *leimesh.Profile) (*plot.Plot, error) {
	upper := prof.Upper()
	lower := prof.Lower()
	ptsUpper := make(plotter.XYs, len(upper))
	for i, p := range upper {
		ptsUpper[i].X = p.X
		ptsUpper[i].Y = p.Y
	}
	ptsLower := make(plotter.XYs, len(lower))
	for i, p := range lower {
		ptsLower[i].X = p.X
		ptsLower[i].Y = p.Y
	}

	p := plot.New()
	params := prof.Params()
	p.Title.Text = "LEI profile, depth " + strconv.FormatFloat(params.Depth, 'g', -1, 64) +
		" %, tube " + strconv.FormatFloat(params.TubeSize, 'g', -1, 64) + " %"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	err := plotutil.AddLines(p,
		"Upper", ptsUpper,
		"Lower", ptsLower,
	)
	if err != nil {
		return nil, err
	}
	bb := prof.Bounds()
	p.X.Min, p.X.Max = bb.Min.X, bb.Max.X
	// Center the profile vertically in a window as tall as the aspect
	// ratio of the figure allows.
	mid := (bb.Min.Y + bb.Max.Y) / 2
	half := (bb.Max.X - bb.Min.X) * float64(profileHeight/profileWidth) / 2
	p.Y.Min, p.Y.Max = mid-half, mid+half
	return p, nil
}

const (
	profileWidth  = 12 * vg.Inch
	profileHeight = 3 * vg.Inch
)

// SaveProfilePlot writes the profile plot to path. The extension of path
// selects the image format.
func SaveProfilePlot(path string, prof *leimesh.Profile) error {
	p, err := ProfilePlot(prof)
	if err != nil {
		return err
	}
	return p.Save(profileWidth, profileHeight, path)
}

// CreateContourCSV writes the contour points to a CSV file.
func CreateContourCSV(path string, prof *leimesh.Profile) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := WriteContourCSV(fp, prof); err != nil {
		return err
	}
	return fp.Close()
}
