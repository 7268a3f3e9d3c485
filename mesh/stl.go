package mesh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"github.com/kiteworks/leimesh"
	"github.com/kiteworks/leimesh/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a 3D triangle with counter-clockwise vertices seen from
// the side its normal points to.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle.
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Extrude returns the closed surface of prof extruded by depth along z,
// with outward facing triangles. The caps are triangulated by ear clipping.
func Extrude(prof *leimesh.Profile, depth float64) ([]Triangle3, error) {
	if !(depth > 0) {
		return nil, fmt.Errorf("extrusion depth must be positive, got %g", depth)
	}
	poly := prof.Distinct()
	if d2.Set(poly).SignedArea() < 0 {
		for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
	}
	caps, err := triangulate(poly)
	if err != nil {
		return nil, err
	}
	at := func(p r2.Vec, z float64) r3.Vec { return r3.Vec{X: p.X, Y: p.Y, Z: z} }
	model := make([]Triangle3, 0, 2*len(caps)+2*len(poly))
	for _, c := range caps {
		a, b, cc := poly[c[0]], poly[c[1]], poly[c[2]]
		model = append(model,
			Triangle3{V: [3]r3.Vec{at(a, depth), at(b, depth), at(cc, depth)}},
			Triangle3{V: [3]r3.Vec{at(a, 0), at(cc, 0), at(b, 0)}},
		)
	}
	n := len(poly)
	for i := range poly {
		a, b := poly[i], poly[(i+1)%n]
		model = append(model,
			Triangle3{V: [3]r3.Vec{at(a, 0), at(b, 0), at(b, depth)}},
			Triangle3{V: [3]r3.Vec{at(a, 0), at(b, depth), at(a, depth)}},
		)
	}
	return model, nil
}

// triangulate ear clips a simple counter-clockwise polygon.
func triangulate(poly []r2.Vec) ([][3]int, error) {
	if len(poly) < 3 {
		return nil, errors.New("polygon needs at least 3 vertices")
	}
	idx := make([]int, len(poly))
	for i := range idx {
		idx[i] = i
	}
	tris := make([][3]int, 0, len(poly)-2)
	for len(idx) > 3 {
		m := len(idx)
		clipped := false
		for i := 0; i < m; i++ {
			ia, ib, ic := idx[(i+m-1)%m], idx[i], idx[(i+1)%m]
			a, b, c := poly[ia], poly[ib], poly[ic]
			if d2.Cross(a, b, c) <= 0 {
				continue // reflex or collinear
			}
			ear := true
			for _, j := range idx {
				if j == ia || j == ib || j == ic {
					continue
				}
				if inTriangle(poly[j], a, b, c) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}
			tris = append(tris, [3]int{ia, ib, ic})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return nil, fmt.Errorf("no ear found with %d vertices left: polygon is not simple", m)
		}
	}
	return append(tris, [3]int{idx[0], idx[1], idx[2]}), nil
}

// inTriangle reports whether p lies in or on the counter-clockwise triangle abc.
func inTriangle(p, a, b, c r2.Vec) bool {
	return d2.Cross(a, b, p) >= 0 && d2.Cross(b, c, p) >= 0 && d2.Cross(c, a, p) >= 0
}

// CreateSTL writes the extruded profile to a binary STL file.
func CreateSTL(path string, prof *leimesh.Profile, depth float64) error {
	model, err := Extrude(prof, depth)
	if err != nil {
		return err
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := WriteSTL(fp, model); err != nil {
		return err
	}
	return fp.Close()
}

// WriteSTL writes model triangles to a writer in STL file format.
func WriteSTL(w io.Writer, model []Triangle3) error {
	if len(model) == 0 {
		return errors.New("empty triangle slice")
	}
	header := stlHeader{
		Count: uint32(len(model)),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	var d stlTriangle
	for _, triangle := range model {
		var b [50]byte
		d.set(triangle)
		d.put(b[:])
		_, err := io.Copy(w, bytes.NewReader(b[:]))
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadSTL reads a binary STL stream. Triangles whose stored normal does not
// match their vertices are returned along with errNormalMismatch.
func ReadSTL(r io.Reader) (output []Triangle3, readErr error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, errors.New("STL header read failed: " + err.Error())
	}
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf [50]byte
		d   stlTriangle
		i   int
	)
	defer func() {
		if readErr != nil && !errors.Is(readErr, errNormalMismatch) {
			readErr = fmt.Errorf("%d/%d STL triangles read: %w", i+1, header.Count, readErr)
		}
	}()
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			if !errors.Is(err, errNormalMismatch) {
				return nil, err
			}
			readErr = err
		}
		output = append(output, d.toTriangle3())
	}
	return output, readErr
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func to3F32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func (t *stlTriangle) set(tri Triangle3) {
	t.Normal = to3F32(tri.Normal())
	t.Vertex1 = to3F32(tri.V[0])
	t.Vertex2 = to3F32(tri.V[1])
	t.Vertex3 = to3F32(tri.V[2])
}

func (t stlTriangle) put(b []byte) {
	if len(b) < 50 {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < 50 {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

var errNormalMismatch = errors.New("triangle normal not approximately equal to calculated normal from vertices")

func (t stlTriangle) validate() error {
	const normTol = 5e-2
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	if t.degenerate(0) {
		return errors.New("triangle is degenerate")
	}
	if !equalWithin3F32(to3F32(t.toTriangle3().Normal()), t.Normal, normTol) {
		return errNormalMismatch
	}
	return nil
}

// degenerate returns true if two vertices of the triangle coincide.
func (t stlTriangle) degenerate(tol float32) bool {
	return equalWithin3F32(t.Vertex1, t.Vertex2, tol) ||
		equalWithin3F32(t.Vertex2, t.Vertex3, tol) ||
		equalWithin3F32(t.Vertex3, t.Vertex1, tol)
}

func equalWithin3F32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}

func (d stlTriangle) toTriangle3() Triangle3 {
	return Triangle3{V: [3]r3.Vec{
		r3From3F32(d.Vertex1),
		r3From3F32(d.Vertex2),
		r3From3F32(d.Vertex3),
	}}
}
