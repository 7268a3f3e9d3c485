package polar

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

const registryRule = "##################"

// Case describes a computed polar in the registry.
type Case struct {
	CSV      string // path of the polar file
	TubeSize float64
	Depth    float64
	CamberAt float64
	TEAngle  float64
	Chord    float64
}

// Name is the case label: the polar path without its .csv extension.
func (c Case) Name() string { return strings.TrimSuffix(c.CSV, ".csv") }

func (c Case) writeTo(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n%s\nTube size = %.2f %%\nDepth = %.2f %%\nat %.2f %% \nTE angle = %.2f °\nChord = %.2f m\n\n",
		registryRule, c.CSV, registryRule, c.TubeSize, c.Depth, c.CamberAt, c.TEAngle, c.Chord)
	return err
}

// Register appends c to the registry file at path unless a case with the
// same polar file is already listed. It reports whether c was added.
func Register(path string, c Case) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if len(content) > 0 {
		cases, err := ReadRegistry(bytes.NewReader(content))
		if err != nil {
			return false, fmt.Errorf("%s: %w", path, err)
		}
		for _, existing := range cases {
			if existing.CSV == c.CSV {
				return false, nil
			}
		}
	}
	fp, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return false, err
	}
	defer fp.Close()
	if err := c.writeTo(fp); err != nil {
		return false, err
	}
	return true, fp.Close()
}

// ReadRegistry parses a registry. Each case is a polar path enclosed by two
// rule lines followed by description lines. Description lines that cannot
// be parsed are ignored.
func ReadRegistry(r io.Reader) ([]Case, error) {
	var (
		cases  []Case
		inName bool
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "###"):
			inName = !inName
		case inName:
			cases = append(cases, Case{CSV: line})
		case line == "" || len(cases) == 0:
		default:
			parseCaseInfo(&cases[len(cases)-1], line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if inName {
		return cases, errors.New("registry ends inside a case header")
	}
	return cases, nil
}

func parseCaseInfo(c *Case, line string) {
	var v float64
	switch {
	case scan(line, "Tube size = %f %%", &v):
		c.TubeSize = v
	case scan(line, "Depth = %f %%", &v):
		c.Depth = v
	case scan(line, "at %f %%", &v):
		c.CamberAt = v
	case scan(line, "TE angle = %f", &v):
		c.TEAngle = v
	case scan(line, "Chord = %f m", &v):
		c.Chord = v
	}
}

func scan(line, format string, v *float64) bool {
	n, _ := fmt.Sscanf(line, format, v)
	return n == 1
}

// LoadRegistry reads the registry file at path.
func LoadRegistry(path string) ([]Case, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return ReadRegistry(fp)
}
