package foam

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Edit sets the value of dictionary entries. Path holds slash separated
// keywords and matches every entry whose keyword path ends with it, so
// "liftDir" matches functions/forces/liftDir and "inlet/type" matches the
// type of the inlet patch.
type Edit struct {
	Path  string
	Value string
}

type tokenKind int

const (
	tokWord tokenKind = iota
	tokString
	tokOpenBrace
	tokCloseBrace
	tokEnd // ;
	tokParen
)

type token struct {
	kind       tokenKind
	text       string
	start, end int // byte offsets into the source
}

// tokenize splits an OpenFOAM dictionary into tokens, dropping comments
// and # directives, which run to the end of their line.
func tokenize(src []byte) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				return nil, fmt.Errorf("offset %d: unterminated comment", i)
			}
			i += end + 4
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '"':
			j := i + 1
			for j < len(src) && src[j] != '"' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(src) {
				return nil, fmt.Errorf("offset %d: unterminated string", i)
			}
			toks = append(toks, token{kind: tokString, text: string(src[i : j+1]), start: i, end: j + 1})
			i = j + 1
		case c == '{':
			toks = append(toks, token{kind: tokOpenBrace, text: "{", start: i, end: i + 1})
			i++
		case c == '}':
			toks = append(toks, token{kind: tokCloseBrace, text: "}", start: i, end: i + 1})
			i++
		case c == ';':
			toks = append(toks, token{kind: tokEnd, text: ";", start: i, end: i + 1})
			i++
		case c == '(' || c == ')':
			toks = append(toks, token{kind: tokParen, text: string(c), start: i, end: i + 1})
			i++
		default:
			j := i
			for j < len(src) && !strings.ContainsRune(" \t\r\n{};()\"", rune(src[j])) {
				j++
			}
			toks = append(toks, token{kind: tokWord, text: string(src[i:j]), start: i, end: j})
			i = j
		}
	}
	return toks, nil
}

// entry is a keyword/value pair located in the source.
type entry struct {
	path []string
	// value spans src[start:end]. start == end for an empty value.
	start, end int
}

// entries lists the keyword entries of a dictionary. A keyword followed by
// a brace opens a sub-dictionary; parentheses around dictionaries, as in
// polyMesh/boundary, are transparent.
func entries(src []byte) ([]entry, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	var (
		out   []entry
		stack []string
	)
	for i := 0; i < len(toks); {
		tok := toks[i]
		switch tok.kind {
		case tokCloseBrace:
			if len(stack) == 0 {
				return nil, fmt.Errorf("offset %d: unbalanced '}'", tok.start)
			}
			stack = stack[:len(stack)-1]
			i++
			continue
		case tokParen, tokEnd:
			i++
			continue
		case tokOpenBrace:
			return nil, fmt.Errorf("offset %d: sub-dictionary without keyword", tok.start)
		}
		keyword := strings.Trim(tok.text, `"`)
		// Scan the value up to ';'. Meeting '{' first means the previous
		// word names a sub-dictionary, as in "5 ( inlet { ... } )".
		j := i + 1
		for j < len(toks) && toks[j].kind != tokEnd && toks[j].kind != tokOpenBrace && toks[j].kind != tokCloseBrace {
			j++
		}
		if j == len(toks) {
			return nil, fmt.Errorf("offset %d: entry %q not terminated", tok.start, keyword)
		}
		switch toks[j].kind {
		case tokOpenBrace:
			name := toks[j-1]
			if name.kind != tokWord && name.kind != tokString {
				return nil, fmt.Errorf("offset %d: sub-dictionary without keyword", toks[j].start)
			}
			stack = append(stack, strings.Trim(name.text, `"`))
			i = j + 1
		case tokCloseBrace:
			return nil, fmt.Errorf("offset %d: entry %q not terminated", tok.start, keyword)
		default:
			e := entry{
				path:  append(append([]string(nil), stack...), keyword),
				start: toks[j].start,
				end:   toks[j].start,
			}
			if j > i+1 {
				e.start = toks[i+1].start
			}
			out = append(out, e)
			i = j + 1
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("dictionary %q not closed", strings.Join(stack, "/"))
	}
	return out, nil
}

func hasSuffix(path, suffix []string) bool {
	if len(suffix) > len(path) {
		return false
	}
	off := len(path) - len(suffix)
	for i := range suffix {
		if path[off+i] != suffix[i] {
			return false
		}
	}
	return true
}

// Apply returns src with the edits applied. Formatting outside the edited
// values is preserved. It fails if an edit matches no entry.
func Apply(src []byte, edits ...Edit) ([]byte, error) {
	ents, err := entries(src)
	if err != nil {
		return nil, err
	}
	type span struct {
		start, end int
		value      string
	}
	var spans []span
	for _, ed := range edits {
		suffix := strings.Split(ed.Path, "/")
		matched := false
		for _, e := range ents {
			if !hasSuffix(e.path, suffix) {
				continue
			}
			matched = true
			value := ed.Value
			if e.start == e.end {
				value = " " + value
			}
			spans = append(spans, span{start: e.start, end: e.end, value: value})
		}
		if !matched {
			return nil, fmt.Errorf("no entry matches %q", ed.Path)
		}
	}
	// Entries are listed in source order; later edits to the same entry win.
	var out bytes.Buffer
	last := 0
	for _, e := range ents {
		var sp *span
		for k := range spans {
			if spans[k].start == e.start && spans[k].end == e.end {
				sp = &spans[k]
			}
		}
		if sp == nil {
			continue
		}
		out.Write(src[last:sp.start])
		out.WriteString(sp.value)
		last = sp.end
	}
	out.Write(src[last:])
	return out.Bytes(), nil
}

// Lookup returns the raw value of the first entry matching path.
func Lookup(src []byte, path string) (string, bool, error) {
	ents, err := entries(src)
	if err != nil {
		return "", false, err
	}
	suffix := strings.Split(path, "/")
	for _, e := range ents {
		if hasSuffix(e.path, suffix) {
			return strings.TrimSpace(string(src[e.start:e.end])), true, nil
		}
	}
	return "", false, nil
}

// EditFile applies edits to the dictionary file at path in place.
func EditFile(path string, edits ...Edit) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := Apply(src, edits...)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, info.Mode().Perm())
}

// Vector formats an OpenFOAM vector value.
func Vector(x, y, z float64) string {
	return "(" + Scalar(x) + " " + Scalar(y) + " " + Scalar(z) + ")"
}

// Scalar formats an OpenFOAM scalar value.
func Scalar(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
