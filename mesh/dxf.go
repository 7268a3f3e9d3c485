package mesh

import (
	"fmt"

	"github.com/kiteworks/leimesh"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/entity"
)

// DXF layer names.
const (
	LayerProfile = "PROFILE"
	LayerRefine  = "REFINE"
)

// CreateDXF writes the profile contour as a closed polyline, and its trailing
// edge refinement points, to a DXF drawing at path.
func CreateDXF(path string, prof *leimesh.Profile) error {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	if _, err := d.AddLayer(LayerProfile, color.Red, dxf.DefaultLineType, true); err != nil {
		return err
	}
	pts := prof.Distinct()
	lwp := entity.NewLwPolyline(len(pts))
	for j, p := range pts {
		lwp.Vertices[j] = []float64{p.X, p.Y}
	}
	lwp.Closed = true
	d.AddEntity(lwp)

	if _, err := d.AddLayer(LayerRefine, color.Blue, dxf.DefaultLineType, true); err != nil {
		return err
	}
	for _, rp := range prof.RefinePoints() {
		if _, err := d.Point(rp.Pos.X, rp.Pos.Y, 0); err != nil {
			return fmt.Errorf("refine point %v: %w", rp.Pos, err)
		}
	}
	return d.SaveAs(path)
}
