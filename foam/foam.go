// Package foam prepares and runs one OpenFOAM case per angle of attack
// on a gmsh mesh and collects the converged force coefficients.
package foam

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kiteworks/leimesh/internal/tool"
	"github.com/kiteworks/leimesh/mesh"
	"github.com/kiteworks/leimesh/polar"
	"go.uber.org/zap"
)

// Case layout.
const (
	MeshFile       = "mesh.msh"
	LogFile        = "log"
	BoundaryFile   = "constant/polyMesh/boundary"
	VelocityFile   = "0/U"
	ControlFile    = "system/controlDict"
	ForceCoeffFile = "postProcessing/forces/0/forceCoeffs.dat"
)

// BaseDirs are the base case directories copied into every angle case.
var BaseDirs = []string{"0", "constant", "system"}

// PatchTypes maps the physical groups of the mesh to OpenFOAM patch types.
var PatchTypes = map[string]string{
	mesh.GroupInlet:   "patch",
	mesh.GroupOutlet:  "patch",
	mesh.GroupSide:    "empty",
	mesh.GroupAirfoil: "wall",
}

// Solver runs the OpenFOAM tools of an angle case.
type Solver struct {
	Runner tool.Runner
	// GmshToFoam and FoamRun are the executables. Empty selects
	// "gmshToFoam" and "foamRun".
	GmshToFoam string
	FoamRun    string
	Log        *zap.Logger
}

func (s Solver) runner() tool.Runner {
	if s.Runner == nil {
		return tool.Exec{Log: s.Log}
	}
	return s.Runner
}

func (s Solver) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func orDefault(name, def string) string {
	if name == "" {
		return def
	}
	return name
}

// CaseDir returns the directory name of the case at angle alpha.
func CaseDir(alpha float64) string {
	return "AOA_" + Scalar(alpha)
}

// Prepare creates the case directory dir from the base case and the mesh
// file. Existing files in dir are overwritten.
func Prepare(base, meshPath, dir string) error {
	for _, sub := range BaseDirs {
		if err := copyTree(filepath.Join(base, sub), filepath.Join(dir, sub)); err != nil {
			return fmt.Errorf("copying base case: %w", err)
		}
	}
	return copyFile(meshPath, filepath.Join(dir, MeshFile))
}

// Inflow returns the dictionary edits setting the freestream of speed u at
// angle alpha in degrees.
func Inflow(alpha, u float64) (velocity, control []Edit) {
	sin, cos := math.Sincos(alpha * math.Pi / 180)
	velocity = []Edit{
		{Path: "internalField", Value: "uniform " + Vector(u*cos, u*sin, 0)},
	}
	control = []Edit{
		{Path: "liftDir", Value: Vector(-sin, cos, 0)},
		{Path: "dragDir", Value: Vector(cos, sin, 0)},
		{Path: "magUInf", Value: Scalar(u)},
	}
	return velocity, control
}

// boundaryEdits returns the edits setting the patch types of the converted
// mesh, including physicalType where the converter wrote one.
func boundaryEdits(src []byte) ([]Edit, error) {
	var edits []Edit
	for _, patch := range []string{mesh.GroupInlet, mesh.GroupOutlet, mesh.GroupSide, mesh.GroupAirfoil} {
		typ := PatchTypes[patch]
		edits = append(edits, Edit{Path: patch + "/type", Value: typ})
		_, ok, err := Lookup(src, patch+"/physicalType")
		if err != nil {
			return nil, err
		}
		if ok {
			edits = append(edits, Edit{Path: patch + "/physicalType", Value: typ})
		}
	}
	return edits, nil
}

// Compute runs the prepared case in dir at angle alpha and freestream speed
// u, and returns the last force coefficients written by the solver.
func (s Solver) Compute(ctx context.Context, dir string, alpha, u float64) (polar.Row, error) {
	log := s.log().With(zap.Float64("alpha", alpha))
	run := s.runner()
	if _, err := run.Run(ctx, dir, orDefault(s.GmshToFoam, "gmshToFoam"), MeshFile); err != nil {
		return polar.Row{}, fmt.Errorf("converting mesh: %w", err)
	}
	boundary := filepath.Join(dir, BoundaryFile)
	src, err := os.ReadFile(boundary)
	if err != nil {
		return polar.Row{}, err
	}
	edits, err := boundaryEdits(src)
	if err != nil {
		return polar.Row{}, fmt.Errorf("%s: %w", boundary, err)
	}
	if err := EditFile(boundary, edits...); err != nil {
		return polar.Row{}, err
	}
	velocity, control := Inflow(alpha, u)
	if err := EditFile(filepath.Join(dir, VelocityFile), velocity...); err != nil {
		return polar.Row{}, err
	}
	if err := EditFile(filepath.Join(dir, ControlFile), control...); err != nil {
		return polar.Row{}, err
	}
	log.Debug("case prepared", zap.String("dir", dir))

	out, runErr := run.Run(ctx, dir, orDefault(s.FoamRun, "foamRun"))
	if err := os.WriteFile(filepath.Join(dir, LogFile), out, 0o644); err != nil {
		log.Warn("writing solver log", zap.Error(err))
	}
	if runErr != nil {
		return polar.Row{}, fmt.Errorf("solving: %w", runErr)
	}
	row, err := LoadForceCoeffs(filepath.Join(dir, ForceCoeffFile))
	if err != nil {
		return polar.Row{}, err
	}
	row.Alpha = alpha
	log.Info("angle solved", zap.Float64("cl", row.Cl), zap.Float64("cd", row.Cd), zap.Float64("cm", row.Cm))
	return row, nil
}

// ReadForceCoeffs returns the last sample of a forceCoeffs.dat stream. The
// columns are Time, Cm, Cd, Cl, Cl(f) and Cl(r); further columns are
// ignored. Alpha is left zero.
func ReadForceCoeffs(r io.Reader) (polar.Row, error) {
	var last string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		last = line
	}
	if err := sc.Err(); err != nil {
		return polar.Row{}, err
	}
	if last == "" {
		return polar.Row{}, errors.New("no force coefficient sample")
	}
	fields := strings.Fields(last)
	if len(fields) < 6 {
		return polar.Row{}, fmt.Errorf("force coefficient sample has %d columns, want at least 6", len(fields))
	}
	var vals [6]float64
	for i := range vals {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return polar.Row{}, fmt.Errorf("force coefficient column %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return polar.Row{Time: vals[0], Cm: vals[1], Cd: vals[2], Cl: vals[3], ClFront: vals[4], ClRear: vals[5]}, nil
}

// LoadForceCoeffs reads the last sample of the forceCoeffs.dat file at path.
func LoadForceCoeffs(path string) (polar.Row, error) {
	fp, err := os.Open(path)
	if err != nil {
		return polar.Row{}, err
	}
	defer fp.Close()
	row, err := ReadForceCoeffs(fp)
	if err != nil {
		return polar.Row{}, fmt.Errorf("%s: %w", path, err)
	}
	return row, nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
