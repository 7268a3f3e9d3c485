// Package polar aggregates solver results into aerodynamic polars. It reads
// and writes the polar CSV files, keeps the registry of computed cases and
// plots one or many polars side by side.
package polar

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// Header is the column header of a polar CSV file.
var Header = []string{"Alpha", "Time", "Cm", "Cd", "Cl", "Cl(f)", "Cl(r)"}

// Row holds the converged force coefficients of one angle of attack.
type Row struct {
	Alpha   float64 // degrees
	Time    float64 // solver iteration of the sample
	Cm      float64
	Cd      float64
	Cl      float64
	ClFront float64
	ClRear  float64
}

func (r Row) record() []string {
	vals := [...]float64{r.Alpha, r.Time, r.Cm, r.Cd, r.Cl, r.ClFront, r.ClRear}
	rec := make([]string, len(vals))
	for i, v := range vals {
		rec[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return rec
}

// SortByAlpha sorts rows by increasing angle of attack.
func SortByAlpha(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Alpha < rows[j].Alpha })
}

// WriteCSV writes the header followed by rows.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write(r.record()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV reads the rows of a polar CSV file. Columns are looked up by
// header name so files with extra or reordered columns are accepted.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	head, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("polar file is empty")
	} else if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(head))
	for i, name := range head {
		col[name] = i
	}
	for _, name := range Header {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("polar header missing column %q", name)
		}
	}
	var rows []Row
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}
		var vals [7]float64
		for i, name := range Header {
			j := col[name]
			if j >= len(rec) {
				return nil, fmt.Errorf("line %d: missing %s value", line, name)
			}
			vals[i], err = strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, name, err)
			}
		}
		rows = append(rows, Row{
			Alpha: vals[0], Time: vals[1], Cm: vals[2], Cd: vals[3],
			Cl: vals[4], ClFront: vals[5], ClRear: vals[6],
		})
	}
	return rows, nil
}

// ResetCSV truncates the polar file at path leaving only the header. The
// file is created if it does not exist.
func ResetCSV(path string) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := WriteCSV(fp, nil); err != nil {
		return err
	}
	return fp.Close()
}

// AppendCSV appends rows to the polar file at path, which must have been
// created by ResetCSV or WriteCSV.
func AppendCSV(path string, rows ...Row) error {
	fp, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer fp.Close()
	writer := csv.NewWriter(fp)
	for _, r := range rows {
		if err := writer.Write(r.record()); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return fp.Close()
}

// LoadCSV reads the polar file at path.
func LoadCSV(path string) ([]Row, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	rows, err := ReadCSV(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
