package mesh

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kiteworks/leimesh"
	"gonum.org/v1/gonum/spatial/r2"
)

// GeoScript is an Exporter that writes a gmsh .geo script using the
// built-in geometry kernel.
type GeoScript struct {
	buf bytes.Buffer

	nPoint, nCurve, nLoop, nSurface, nField, nExtrude int
	// extruded entities are only known by reference into the extrusion
	// result list, ie: "ext1[2]".
	surfaceRef map[SurfaceTag]string
	volumeRef  map[VolumeTag]string
	nRef       int
	// curve count of each loop and loops of each plane surface.
	loopCurves   map[LoopTag]int
	surfaceLoops map[SurfaceTag][]LoopTag
}

var _ Exporter = (*GeoScript)(nil)

// NewGeoScript returns a script with the gmsh options the solver needs.
func NewGeoScript() *GeoScript {
	g := &GeoScript{
		surfaceRef: make(map[SurfaceTag]string),
		volumeRef:  make(map[VolumeTag]string),

		loopCurves:   make(map[LoopTag]int),
		surfaceLoops: make(map[SurfaceTag][]LoopTag),
	}
	g.printf("// LEI airfoil fluid domain\n")
	g.printf("General.ExpertMode = 1;\n")
	g.printf("Mesh.MshFileVersion = 2.2;\n")
	return g
}

func (g *GeoScript) printf(format string, args ...interface{}) {
	fmt.Fprintf(&g.buf, format, args...)
}

func num(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func (g *GeoScript) Point(p r2.Vec, size float64) PointTag {
	g.nPoint++
	g.printf("Point(%d) = {%s, %s, 0, %s};\n", g.nPoint, num(p.X), num(p.Y), num(size))
	return PointTag(g.nPoint)
}

func (g *GeoScript) Line(start, end PointTag) CurveTag {
	g.nCurve++
	g.printf("Line(%d) = {%d, %d};\n", g.nCurve, start, end)
	return CurveTag(g.nCurve)
}

func (g *GeoScript) Spline(pts ...PointTag) CurveTag {
	g.nCurve++
	g.printf("Spline(%d) = {%s};\n", g.nCurve, join(pts))
	return CurveTag(g.nCurve)
}

func (g *GeoScript) CircleArc(start, center, end PointTag) CurveTag {
	g.nCurve++
	g.printf("Circle(%d) = {%d, %d, %d};\n", g.nCurve, start, center, end)
	return CurveTag(g.nCurve)
}

func (g *GeoScript) CurveLoop(curves ...CurveTag) LoopTag {
	g.nLoop++
	g.printf("Curve Loop(%d) = {%s};\n", g.nLoop, join(curves))
	tag := LoopTag(g.nLoop)
	g.loopCurves[tag] = len(curves)
	return tag
}

func (g *GeoScript) PlaneSurface(loops ...LoopTag) SurfaceTag {
	g.nSurface++
	g.printf("Plane Surface(%d) = {%s};\n", g.nSurface, join(loops))
	tag := SurfaceTag(g.nSurface)
	g.surfaceRef[tag] = strconv.Itoa(g.nSurface)
	g.surfaceLoops[tag] = loops
	return tag
}

func (g *GeoScript) BoundaryLayer(curves []CurveTag, bl leimesh.BoundaryLayer) FieldTag {
	g.nField++
	f := g.nField
	ratio := bl.Ratio
	if ratio == 0 {
		ratio = leimesh.BoundaryLayerRatio
	}
	g.printf("Field[%d] = BoundaryLayer;\n", f)
	g.printf("Field[%d].CurvesList = {%s};\n", f, join(curves))
	g.printf("Field[%d].Size = %s;\n", f, num(bl.FirstCellHeight))
	g.printf("Field[%d].Ratio = %s;\n", f, num(ratio))
	g.printf("Field[%d].Thickness = %s;\n", f, num(bl.Thickness))
	g.printf("Field[%d].Quads = 1;\n", f)
	g.printf("BoundaryLayer Field = %d;\n", f)
	return FieldTag(f)
}

// Extrude extrudes s by depth along z in a single recombined layer. The
// lateral surfaces are referenced by position in the extrusion result, so
// Extrude must be given a surface whose loops were all created by this
// script.
func (g *GeoScript) Extrude(s SurfaceTag, depth float64) Extrusion {
	g.nExtrude++
	name := "ext" + strconv.Itoa(g.nExtrude)
	g.printf("%s[] = Extrude {0, 0, %s} { Surface{%s}; Layers{1}; Recombine; };\n", name, num(depth), g.surfaceRef[s])

	ref := func(i int) string { return name + "[" + strconv.Itoa(i) + "]" }
	// Negative handles keep extruded entities apart from created ones.
	newSurface := func(i int) SurfaceTag {
		g.nRef++
		tag := SurfaceTag(-g.nRef)
		g.surfaceRef[tag] = ref(i)
		return tag
	}
	ext := Extrusion{Top: newSurface(0)}
	g.nRef++
	ext.Volume = VolumeTag(-g.nRef)
	g.volumeRef[ext.Volume] = ref(1)
	i := 2
	for _, l := range g.surfaceLoops[s] {
		for j := 0; j < g.loopCurves[l]; j++ {
			ext.Lateral = append(ext.Lateral, newSurface(i))
			i++
		}
	}
	return ext
}

func (g *GeoScript) PhysicalSurface(name string, s ...SurfaceTag) {
	refs := make([]string, len(s))
	for i, tag := range s {
		refs[i] = g.surfaceRef[tag]
	}
	g.printf("Physical Surface(%q) = {%s};\n", name, strings.Join(refs, ", "))
}

func (g *GeoScript) PhysicalVolume(name string, v ...VolumeTag) {
	refs := make([]string, len(v))
	for i, tag := range v {
		refs[i] = g.volumeRef[tag]
	}
	g.printf("Physical Volume(%q) = {%s};\n", name, strings.Join(refs, ", "))
}

// WriteTo writes the script to w.
func (g *GeoScript) WriteTo(w io.Writer) (int64, error) {
	return io.Copy(w, bytes.NewReader(g.buf.Bytes()))
}

// Save writes the script to path.
func (g *GeoScript) Save(path string) error {
	return os.WriteFile(path, g.buf.Bytes(), 0o644)
}

func join[T ~int](tags []T) string {
	s := make([]string, len(tags))
	for i, t := range tags {
		s[i] = strconv.Itoa(int(t))
	}
	return strings.Join(s, ", ")
}
