package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Record-level skip reasons. Decoding never fails a stream; it reports one
// of these so callers can count what was dropped.
var (
	ErrShortLine    = errors.New("line shorter than layout minimum")
	ErrHeaderLine   = errors.New("header or comment line")
	ErrNotCandidate = errors.New("line is not a record of this type")
	ErrInvalidField = errors.New("field failed validation")
)

// Field is a half-open [Start, End) column range, 0-indexed.
type Field struct {
	Start int
	End   int
}

// FieldCheck validates one trimmed field value.
type FieldCheck func(string) bool

// Layout is a named column-offset contract for one fixed-width file family.
// Offsets count characters of the decoded line, which for the single-byte
// encodings these files use is the same as source byte columns.
type Layout struct {
	Name string

	// MinLength rejects truncated lines.
	MinLength int

	// RecordPrefix, when set, is required at the start of every record line.
	RecordPrefix string

	// SkipPrefixes mark header, comment and separator lines.
	SkipPrefixes []string

	Fields   map[string]Field
	Required map[string]FieldCheck
}

// Row holds the trimmed field values of one decoded line.
type Row map[string]string

// Decode slices line into the layout's named fields. Slicing past the end
// of the line yields an empty field rather than an error.
func (l Layout) Decode(line string) (Row, error) {
	line = strings.TrimRight(line, "\r\n")

	if l.RecordPrefix != "" && !strings.HasPrefix(line, l.RecordPrefix) {
		return nil, ErrNotCandidate
	}
	for _, p := range l.SkipPrefixes {
		if strings.HasPrefix(line, p) {
			return nil, ErrHeaderLine
		}
	}

	cols := newColIndex(line)
	if cols.len() < l.MinLength {
		return nil, ErrShortLine
	}

	row := make(Row, len(l.Fields))
	for name, f := range l.Fields {
		row[name] = strings.TrimSpace(cols.slice(f.Start, f.End))
	}
	for name, check := range l.Required {
		if !check(row[name]) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidField, name)
		}
	}
	return row, nil
}

// WithOverrides returns a copy of l with the given fields replaced. Only
// fields already present in l may be overridden.
func (l Layout) WithOverrides(minLength int, fields map[string]Field) (Layout, error) {
	out := l
	out.Fields = make(map[string]Field, len(l.Fields))
	for k, v := range l.Fields {
		out.Fields[k] = v
	}
	if minLength > 0 {
		out.MinLength = minLength
	}
	for name, f := range fields {
		if _, ok := l.Fields[name]; !ok {
			return Layout{}, fmt.Errorf("%s layout: unknown field %q", l.Name, name)
		}
		if f.Start < 0 || f.End <= f.Start {
			return Layout{}, fmt.Errorf("%s layout: field %q has invalid range [%d,%d)", l.Name, name, f.Start, f.End)
		}
		out.Fields[name] = f
	}
	return out, nil
}

// IsDigits reports whether s is a non-empty run of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NonEmpty reports whether s has any content.
func NonEmpty(s string) bool { return s != "" }

// colIndex indexes a line by character. ASCII lines are sliced directly.
type colIndex struct {
	s     string
	runes []rune
	ascii bool
}

func newColIndex(s string) colIndex {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return colIndex{runes: []rune(s)}
		}
	}
	return colIndex{s: s, ascii: true}
}

func (c colIndex) len() int {
	if c.ascii {
		return len(c.s)
	}
	return len(c.runes)
}

func (c colIndex) slice(start, end int) string {
	n := c.len()
	if start >= n {
		return ""
	}
	if end > n {
		end = n
	}
	if c.ascii {
		return c.s[start:end]
	}
	return string(c.runes[start:end])
}
