package foam

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const velocityDict = `/*--------------------------------*- C++ -*----------------------------------*\
  =========                 |
  \\      /  F ield         | OpenFOAM: The Open Source CFD Toolbox
\*---------------------------------------------------------------------------*/
FoamFile
{
    version     2.0;
    format      ascii;
    class       volVectorField;
    object      U;
}
// * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * //

dimensions      [0 1 -1 0 0 0 0];

internalField   uniform (20 0 0);

boundaryField
{
    inlet
    {
        type            freestreamVelocity;
        freestreamValue $internalField;
    }
    outlet
    {
        type            freestreamVelocity;
        freestreamValue $internalField;
    }
    airfoil
    {
        type            noSlip;
    }
    side
    {
        type            empty;
    }
}
`

const controlDict = `FoamFile
{
    version     2.0;
    format      ascii;
    class       dictionary;
    object      controlDict;
}

application     foamRun;
solver          incompressibleFluid;
endTime         2000;

functions
{
    #includeFunc residuals(p, U)
    forces
    {
        type            forceCoeffs;
        libs            ("libforces.so");
        patches         (airfoil);
        rho             rhoInf;
        rhoInf          1;
        liftDir         (0 1 0);
        dragDir         (1 0 0);
        CofR            (0.25 0 0);
        pitchAxis       (0 0 1);
        magUInf         20;
        lRef            1;
        Aref            1;
    }
}
`

const boundaryDict = `FoamFile
{
    version     2.0;
    format      ascii;
    class       polyBoundaryMesh;
    location    "constant/polyMesh";
    object      boundary;
}

4
(
    inlet
    {
        type            patch;
        physicalType    patch;
        nFaces          180;
        startFace       52000;
    }
    outlet
    {
        type            patch;
        physicalType    patch;
        nFaces          60;
        startFace       52180;
    }
    side
    {
        type            patch;
        physicalType    patch;
        nFaces          53000;
        startFace       52240;
    }
    airfoil
    {
        type            patch;
        physicalType    patch;
        nFaces          346;
        startFace       105240;
    }
)
`

func lookup(t *testing.T, src []byte, path string) string {
	t.Helper()
	v, ok, err := Lookup(src, path)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("no entry %q", path)
	}
	return v
}

func TestLookup(t *testing.T) {
	for _, test := range []struct {
		src, path, want string
	}{
		{velocityDict, "internalField", "uniform (20 0 0)"},
		{velocityDict, "inlet/freestreamValue", "$internalField"},
		{velocityDict, "airfoil/type", "noSlip"},
		{velocityDict, "FoamFile/class", "volVectorField"},
		{controlDict, "liftDir", "(0 1 0)"},
		{controlDict, "functions/forces/magUInf", "20"},
		{controlDict, "libs", `("libforces.so")`},
		{boundaryDict, "side/nFaces", "53000"},
		{boundaryDict, "location", `"constant/polyMesh"`},
	} {
		if got := lookup(t, []byte(test.src), test.path); got != test.want {
			t.Errorf("%s: got %q, want %q", test.path, got, test.want)
		}
	}
	if _, ok, _ := Lookup([]byte(controlDict), "residuals"); ok {
		t.Error("directive parsed as an entry")
	}
}

func TestApply(t *testing.T) {
	src := []byte(controlDict)
	edits := []Edit{
		{Path: "liftDir", Value: "(-0.5 0.866 0)"},
		{Path: "forces/dragDir", Value: "(0.866 0.5 0)"},
		{Path: "magUInf", Value: "21.9"},
	}
	got, err := Apply(src, edits...)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range edits {
		if v := lookup(t, got, e.Path); v != e.Value {
			t.Errorf("%s: got %q, want %q", e.Path, v, e.Value)
		}
	}
	if !strings.Contains(string(got), "        liftDir         (-0.5 0.866 0);\n") {
		t.Error("edit did not preserve the entry layout")
	}
	if !strings.Contains(string(got), "#includeFunc residuals(p, U)\n") {
		t.Error("edit dropped a directive")
	}
	// Only the edited values change.
	if n := strings.Count(string(got), "\n"); n != strings.Count(controlDict, "\n") {
		t.Errorf("line count changed to %d", n)
	}
}

func TestApplyIdempotent(t *testing.T) {
	velocity, control := Inflow(8, 21.9)
	for _, test := range []struct {
		src   string
		edits []Edit
	}{
		{velocityDict, velocity},
		{controlDict, control},
	} {
		once, err := Apply([]byte(test.src), test.edits...)
		if err != nil {
			t.Fatal(err)
		}
		twice, err := Apply(once, test.edits...)
		if err != nil {
			t.Fatal(err)
		}
		if string(once) != string(twice) {
			t.Errorf("applying edits twice differs:\n%s\n%s", once, twice)
		}
	}
}

func TestApplyEmptyValue(t *testing.T) {
	got, err := Apply([]byte("a 1;\nflag;\n"), Edit{Path: "flag", Value: "on"})
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a 1;\nflag on;\n" {
		t.Errorf("got %q", got)
	}
}

func TestApplyErrors(t *testing.T) {
	for _, test := range []struct {
		name, src string
		edit      Edit
	}{
		{"no match", controlDict, Edit{Path: "liftDirection", Value: "(0 1 0)"}},
		{"wrong parent", controlDict, Edit{Path: "FoamFile/liftDir", Value: "(0 1 0)"}},
		{"unbalanced", "a { b 1;\n", Edit{Path: "b", Value: "2"}},
		{"extra brace", "a 1;\n}\n", Edit{Path: "a", Value: "2"}},
		{"unterminated", "a { b 1 }\n", Edit{Path: "b", Value: "2"}},
		{"open comment", "a 1; /* comment\n", Edit{Path: "a", Value: "2"}},
	} {
		if _, err := Apply([]byte(test.src), test.edit); err == nil {
			t.Errorf("%s: expected error", test.name)
		}
	}
}

func TestBoundaryEdits(t *testing.T) {
	src := []byte(boundaryDict)
	edits, err := boundaryEdits(src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Apply(src, edits...)
	if err != nil {
		t.Fatal(err)
	}
	for patch, want := range map[string]string{
		"inlet":   "patch",
		"outlet":  "patch",
		"side":    "empty",
		"airfoil": "wall",
	} {
		for _, key := range []string{"type", "physicalType"} {
			if v := lookup(t, got, patch+"/"+key); v != want {
				t.Errorf("%s/%s = %q, want %q", patch, key, v, want)
			}
		}
	}
	if v := lookup(t, got, "airfoil/startFace"); v != "105240" {
		t.Errorf("startFace changed to %q", v)
	}
}

func TestInflow(t *testing.T) {
	velocity, control := Inflow(0, 20)
	got, err := Apply([]byte(velocityDict), velocity...)
	if err != nil {
		t.Fatal(err)
	}
	if v := lookup(t, got, "internalField"); v != "uniform (20 0 0)" {
		t.Errorf("internalField = %q", v)
	}
	got, err = Apply([]byte(controlDict), control...)
	if err != nil {
		t.Fatal(err)
	}
	for path, want := range map[string]string{
		"liftDir": "(0 1 0)",
		"dragDir": "(1 0 0)",
		"magUInf": "20",
	} {
		if v := lookup(t, got, path); v != want {
			t.Errorf("%s = %q, want %q", path, v, want)
		}
	}
}

func TestEditFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "U")
	if err := os.WriteFile(path, []byte(velocityDict), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := EditFile(path, Edit{Path: "internalField", Value: "uniform (1 2 0)"}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if v := lookup(t, b, "internalField"); v != "uniform (1 2 0)" {
		t.Errorf("internalField = %q", v)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("file mode changed to %v", info.Mode().Perm())
	}
	if err := EditFile(path, Edit{Path: "missing", Value: "1"}); err == nil {
		t.Error("expected error for unmatched edit")
	}
}
