package polar

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/plot/cmpimg"
	"gonum.org/v1/plot/vg"
)

var sampleRows = []Row{
	{Alpha: 0, Time: 2000, Cm: -0.0512, Cd: 0.0231, Cl: 0.612, ClFront: 0.25, ClRear: 0.362},
	{Alpha: 2, Time: 2000, Cm: -0.0588, Cd: 0.0262, Cl: 0.834, ClFront: 0.358, ClRear: 0.476},
	{Alpha: 4, Time: 1850, Cm: -0.0641, Cd: 0.0317, Cl: 1.031, ClFront: 0.456, ClRear: 0.575},
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRows); err != nil {
		t.Fatal(err)
	}
	if first := strings.SplitN(buf.String(), "\n", 2)[0]; first != "Alpha,Time,Cm,Cd,Cl,Cl(f),Cl(r)" {
		t.Errorf("got header %q", first)
	}
	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sampleRows, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSVColumnsByName(t *testing.T) {
	const src = "Cl,Alpha,Cd,Cm,Time,Cl(f),Cl(r),note\n0.5,3,0.02,-0.1,100,0.2,0.3,ok\n"
	got, err := ReadCSV(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	want := []Row{{Alpha: 3, Time: 100, Cm: -0.1, Cd: 0.02, Cl: 0.5, ClFront: 0.2, ClRear: 0.3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSVErrors(t *testing.T) {
	for _, src := range []string{
		"",
		"Alpha,Time,Cm,Cd,Cl\n1,2,3,4,5\n",
		"Alpha,Time,Cm,Cd,Cl,Cl(f),Cl(r)\n1,2,3,x,5,6,7\n",
		"Alpha,Time,Cm,Cd,Cl,Cl(f),Cl(r)\n1,2,3\n",
	} {
		if _, err := ReadCSV(strings.NewReader(src)); err == nil {
			t.Errorf("expected error reading %q", src)
		}
	}
}

func TestResetAppendCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default-kite.csv")
	if err := os.WriteFile(path, []byte("stale content\n1,2,3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ResetCSV(path); err != nil {
		t.Fatal(err)
	}
	rows, err := LoadCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Fatalf("reset file holds %d rows", len(rows))
	}
	for _, r := range sampleRows {
		if err := AppendCSV(path, r); err != nil {
			t.Fatal(err)
		}
	}
	rows, err = LoadCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sampleRows, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if err := AppendCSV(filepath.Join(t.TempDir(), "missing.csv"), sampleRows[0]); err == nil {
		t.Error("expected error appending to a missing file")
	}
}

func TestSortByAlpha(t *testing.T) {
	rows := []Row{{Alpha: 4}, {Alpha: -2}, {Alpha: 0}}
	SortByAlpha(rows)
	for i := 1; i < len(rows); i++ {
		if rows[i-1].Alpha > rows[i].Alpha {
			t.Fatalf("rows not sorted: %v", rows)
		}
	}
}

func TestRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polars_list.txt")
	kite := Case{CSV: "results/default-kite.csv", TubeSize: 9, Depth: 9, CamberAt: 25, TEAngle: 7, Chord: 1}
	thin := Case{CSV: "results/thin.csv", TubeSize: 6, Depth: 14, CamberAt: 22, TEAngle: 13, Chord: 1.5}
	for i, test := range []struct {
		c     Case
		added bool
	}{
		{kite, true},
		{thin, true},
		{kite, false},
	} {
		added, err := Register(path, test.c)
		if err != nil {
			t.Fatal(err)
		}
		if added != test.added {
			t.Errorf("register %d: added=%v, want %v", i, added, test.added)
		}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	const wantFirst = "##################\nresults/default-kite.csv\n##################\n" +
		"Tube size = 9.00 %\nDepth = 9.00 %\nat 25.00 % \nTE angle = 7.00 °\nChord = 1.00 m\n\n"
	if !strings.HasPrefix(string(content), wantFirst) {
		t.Errorf("registry starts with\n%s\nwant\n%s", content, wantFirst)
	}
	cases, err := LoadRegistry(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Case{kite, thin}, cases); diff != "" {
		t.Errorf("cases mismatch (-want +got):\n%s", diff)
	}
	if name := cases[0].Name(); name != "results/default-kite" {
		t.Errorf("got case name %q", name)
	}
}

func TestReadRegistryNamesOnly(t *testing.T) {
	const src = "###\na.csv\n###\n\n###\nb.csv\n###\nfree text\n"
	cases, err := ReadRegistry(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Case{{CSV: "a.csv"}, {CSV: "b.csv"}}, cases); diff != "" {
		t.Errorf("cases mismatch (-want +got):\n%s", diff)
	}
	if _, err := ReadRegistry(strings.NewReader("###\na.csv\n")); err == nil {
		t.Error("expected error for unterminated case header")
	}
}

func TestPlots(t *testing.T) {
	if _, err := Plots(); err == nil {
		t.Error("expected error with no series")
	}
	plots, err := Plots(Series{Label: "kite", Rows: sampleRows}, Series{Label: "thin", Rows: sampleRows[:2]})
	if err != nil {
		t.Fatal(err)
	}
	titles := []string{"Cl vs Alpha", "Cd vs Alpha", "Cm vs Alpha", "Cl vs Cd"}
	for i, p := range plots {
		if p.Title.Text != titles[i] {
			t.Errorf("plot %d titled %q, want %q", i, p.Title.Text, titles[i])
		}
	}
	if plots[3].X.Label.Text != "Cd" || plots[3].Y.Label.Text != "Cl" {
		t.Errorf("drag polar axes are %q/%q", plots[3].X.Label.Text, plots[3].Y.Label.Text)
	}
}

func TestWritePNGDeterministic(t *testing.T) {
	series := Series{Label: "results/default-kite", Rows: sampleRows}
	var a, b bytes.Buffer
	for _, buf := range []*bytes.Buffer{&a, &b} {
		if err := WritePNG(buf, 6*vg.Inch, 5*vg.Inch, series); err != nil {
			t.Fatal(err)
		}
	}
	equal, err := cmpimg.Equal("png", a.Bytes(), b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Error("polar figure rendering is not deterministic")
	}
}

func TestThumbnail(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, 6*vg.Inch, 5*vg.Inch, Series{Label: "kite", Rows: sampleRows}); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	thumb := Thumbnail(img, 120, 120)
	bounds := thumb.Bounds()
	if bounds.Dx() > 120 || bounds.Dy() > 120 {
		t.Errorf("thumbnail is %dx%d, want within 120x120", bounds.Dx(), bounds.Dy())
	}
	if bounds.Dx() != 120 {
		t.Errorf("thumbnail width %d, want 120 for a landscape figure", bounds.Dx())
	}
}
