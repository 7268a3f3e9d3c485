package foam

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kiteworks/leimesh/polar"
	"gonum.org/v1/gonum/floats/scalar"
)

// fakeFoam stands in for gmshToFoam and foamRun. It writes the files the
// real tools would write into the case directory.
type fakeFoam struct {
	mu    sync.Mutex
	calls []string
	// failAt makes foamRun fail for this case directory.
	failAt string
}

func (f *fakeFoam) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filepath.Base(dir)+":"+name)
	f.mu.Unlock()
	switch name {
	case "gmshToFoam":
		if len(args) != 1 || args[0] != MeshFile {
			return nil, fmt.Errorf("unexpected arguments %v", args)
		}
		if _, err := os.Stat(filepath.Join(dir, MeshFile)); err != nil {
			return nil, err
		}
		return nil, writeFile(filepath.Join(dir, BoundaryFile), boundaryDict)
	case "foamRun":
		if filepath.Base(dir) == f.failAt {
			return []byte("FOAM FATAL ERROR\n"), errors.New("exit status 1")
		}
		alpha, err := strconv.ParseFloat(strings.TrimPrefix(filepath.Base(dir), "AOA_"), 64)
		if err != nil {
			return nil, err
		}
		dat := "# Force coefficients\n# Time\tCm\tCd\tCl\tCl(f)\tCl(r)\n" +
			"1\t0.1\t0.9\t0.1\t0.05\t0.05\n" +
			fmt.Sprintf("2000\t-0.05\t%g\t%g\t0.3\t0.2\n", 0.02+0.001*alpha, 0.5+0.1*alpha)
		return []byte("End\n"), writeFile(filepath.Join(dir, ForceCoeffFile), dat)
	}
	return nil, fmt.Errorf("unknown tool %q", name)
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// newBaseCase writes a minimal base case and mesh under a temporary
// directory and returns their paths.
func newBaseCase(t *testing.T) (base, meshPath string) {
	t.Helper()
	root := t.TempDir()
	base = filepath.Join(root, "Cas_de_base")
	for path, content := range map[string]string{
		VelocityFile:                       velocityDict,
		ControlFile:                        controlDict,
		"constant/physicalProperties":      "viscosityModel constant;\nnu 1.4693877551020408e-05;\n",
		"constant/momentumTransport":       "simulationType laminar;\n",
		"system/fvSchemes":                 "ddtSchemes { default steadyState; }\n",
		"system/include/initialConditions": "flowVelocity (20 0 0);\n",
	} {
		if err := writeFile(filepath.Join(base, path), content); err != nil {
			t.Fatal(err)
		}
	}
	meshPath = filepath.Join(root, "data", "mesh.msh")
	if err := writeFile(meshPath, "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n"); err != nil {
		t.Fatal(err)
	}
	return base, meshPath
}

func TestAngles(t *testing.T) {
	got, err := Angles(0, 17, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 2, 4, 6, 8, 10, 12, 14, 16}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("angles mismatch (-want +got):\n%s", diff)
	}
	got, err = Angles(-4, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{-4, 0}, got); diff != "" {
		t.Errorf("angles mismatch (-want +got):\n%s", diff)
	}
	if _, err := Angles(0, 10, 0); err == nil {
		t.Error("expected error for zero step")
	}
}

func TestCaseDir(t *testing.T) {
	for alpha, want := range map[float64]string{0: "AOA_0", 2: "AOA_2", 2.5: "AOA_2.5", -4: "AOA_-4"} {
		if got := CaseDir(alpha); got != want {
			t.Errorf("CaseDir(%g) = %q, want %q", alpha, got, want)
		}
	}
}

func TestReadForceCoeffs(t *testing.T) {
	const src = "# Force coefficients\n# Time Cm Cd Cl Cl(f) Cl(r)\n1 0 0 0 0 0\n1999 -0.04 0.021 0.61 0.25 0.36\n2000 -0.05 0.022 0.62 0.26 0.36 0.7\n\n"
	got, err := ReadForceCoeffs(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	want := polar.Row{Time: 2000, Cm: -0.05, Cd: 0.022, Cl: 0.62, ClFront: 0.26, ClRear: 0.36}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
	for _, bad := range []string{"", "# only comments\n", "1 2 3\n", "1 2 x 4 5 6\n"} {
		if _, err := ReadForceCoeffs(strings.NewReader(bad)); err == nil {
			t.Errorf("expected error reading %q", bad)
		}
	}
}

func TestPrepare(t *testing.T) {
	base, meshPath := newBaseCase(t)
	dir := filepath.Join(t.TempDir(), "AOA_4")
	if err := Prepare(base, meshPath, dir); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{VelocityFile, ControlFile, "system/include/initialConditions", MeshFile} {
		if _, err := os.Stat(filepath.Join(dir, path)); err != nil {
			t.Errorf("%s not copied: %v", path, err)
		}
	}
	if err := Prepare(filepath.Join(base, "missing"), meshPath, dir); err == nil {
		t.Error("expected error for missing base case")
	}
}

func TestSweep(t *testing.T) {
	base, meshPath := newBaseCase(t)
	root := t.TempDir()
	runner := &fakeFoam{}
	var onRow int
	s := Sweep{
		Solver:   Solver{Runner: runner},
		Base:     base,
		Mesh:     meshPath,
		Root:     root,
		Velocity: 20,
		Angles:   []float64{4, 0, 2},
		Parallel: 2,
		OnRow: func(polar.Row) error {
			onRow++
			return nil
		},
	}
	rows, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if onRow != 3 {
		t.Errorf("OnRow called %d times, want 3", onRow)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, alpha := range []float64{0, 2, 4} {
		r := rows[i]
		if r.Alpha != alpha {
			t.Errorf("row %d alpha %g, want %g", i, r.Alpha, alpha)
		}
		if r.Time != 2000 {
			t.Errorf("alpha %g: took sample at time %g, want the last one", alpha, r.Time)
		}
		if !scalar.EqualWithinAbs(r.Cl, 0.5+0.1*alpha, 1e-12) {
			t.Errorf("alpha %g: Cl %g", alpha, r.Cl)
		}
	}

	dir := filepath.Join(root, "AOA_0")
	boundary, err := os.ReadFile(filepath.Join(dir, BoundaryFile))
	if err != nil {
		t.Fatal(err)
	}
	if v := lookup(t, boundary, "airfoil/type"); v != "wall" {
		t.Errorf("airfoil patch type %q", v)
	}
	u, err := os.ReadFile(filepath.Join(dir, VelocityFile))
	if err != nil {
		t.Fatal(err)
	}
	if v := lookup(t, u, "internalField"); v != "uniform (20 0 0)" {
		t.Errorf("internalField %q", v)
	}
	if b, err := os.ReadFile(filepath.Join(dir, LogFile)); err != nil || string(b) != "End\n" {
		t.Errorf("solver log %q, %v", b, err)
	}
	// The base case is left untouched.
	b, err := os.ReadFile(filepath.Join(base, ControlFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != controlDict {
		t.Error("base case controlDict modified")
	}
}

func TestSweepContinueOnError(t *testing.T) {
	base, meshPath := newBaseCase(t)
	runner := &fakeFoam{failAt: "AOA_2"}
	s := Sweep{
		Solver:          Solver{Runner: runner},
		Base:            base,
		Mesh:            meshPath,
		Root:            t.TempDir(),
		Velocity:        20,
		Angles:          []float64{0, 2, 4},
		ContinueOnError: true,
	}
	rows, err := s.Run(context.Background())
	var angleErr *AngleError
	if !errors.As(err, &angleErr) {
		t.Fatalf("got error %v, want *AngleError", err)
	}
	if angleErr.Alpha != 2 {
		t.Errorf("failure reported for alpha %g, want 2", angleErr.Alpha)
	}
	if len(rows) != 2 || rows[0].Alpha != 0 || rows[1].Alpha != 4 {
		t.Errorf("got rows %+v, want alphas 0 and 4", rows)
	}
}

func TestSweepStopsOnError(t *testing.T) {
	base, meshPath := newBaseCase(t)
	runner := &fakeFoam{failAt: "AOA_0"}
	s := Sweep{
		Solver:   Solver{Runner: runner},
		Base:     base,
		Mesh:     meshPath,
		Root:     t.TempDir(),
		Velocity: 20,
		Angles:   []float64{0, 2, 4},
	}
	rows, err := s.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if rows != nil {
		t.Errorf("got rows %+v after failure", rows)
	}
	// Angles run one at a time, so the failure at the first angle stops
	// the sweep before the others are solved.
	for _, call := range runner.calls {
		if strings.HasPrefix(call, "AOA_4:foamRun") {
			t.Error("sweep kept solving after a failure")
		}
	}
}

func TestSweepInvalid(t *testing.T) {
	for _, s := range []Sweep{
		{Velocity: 20},
		{Velocity: 0, Angles: []float64{0}},
	} {
		if _, err := s.Run(context.Background()); err == nil {
			t.Errorf("expected error for %+v", s)
		}
	}
}
