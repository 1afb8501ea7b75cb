// Package table decodes the tab-separated edge tables exchanged with the
// clustering algorithm: the structural table it prints on stdout and the
// three-column edge list it reads as input.
package table

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Relation flags used by CliXO in the third column of its output.
const (
	FlagGene    = "gene"
	FlagDefault = "default"
)

// Row is one data line of an edge table.
type Row struct {
	// Fields holds every tab-separated field verbatim. It always has at
	// least two entries.
	Fields []string
	// Flag is the relation flag from the third field, if it carried one.
	Flag string
	// Weight is the numeric weight or score, valid when HasWeight is true.
	Weight    float64
	HasWeight bool
}

// Parent returns the first field.
func (r Row) Parent() string { return r.Fields[0] }

// Child returns the second field.
func (r Row) Child() string { return r.Fields[1] }

// Table is an ordered, immutable snapshot of parsed rows.
type Table struct {
	rows []Row
}

// Rows returns the rows in input order.
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	return t.rows
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// ParseError reports why a table could not be decoded.
type ParseError struct {
	// Line is 1-based; zero means the error is not tied to a line.
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes raw bytes into a Table. The whole input is rejected on the
// first malformed line; rows are neither reordered nor deduplicated.
func Parse(raw []byte) (*Table, error) {
	if _, _, err := transform.Bytes(encoding.UTF8Validator, raw); err != nil {
		return nil, &ParseError{Msg: "output is not valid UTF-8", Err: err}
	}

	t := &Table{}
	for i, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		row, err := parseRow(line)
		if err != nil {
			err.Line = i + 1
			return nil, err
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func parseRow(line string) (Row, *ParseError) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return Row{}, &ParseError{Msg: fmt.Sprintf("expected at least 2 tab-separated fields, got %d", len(fields))}
	}
	row := Row{Fields: fields}
	if len(fields) == 2 {
		return row, nil
	}

	third := fields[2]
	switch third {
	case FlagGene, FlagDefault:
		row.Flag = third
		if len(fields) > 3 {
			w, err := parseWeight(fields[3])
			if err != nil {
				return Row{}, &ParseError{Msg: "malformed score in field 4", Err: err}
			}
			row.Weight, row.HasWeight = w, true
		}
	default:
		w, err := parseWeight(third)
		if err != nil {
			return Row{}, &ParseError{Msg: "malformed weight in field 3", Err: err}
		}
		row.Weight, row.HasWeight = w, true
	}
	return row, nil
}

var errNonFinite = errors.New("weight is not a finite number")

// parseWeight keeps strconv.ErrRange in the chain so overflow stays
// distinguishable from other malformed input.
func parseWeight(s string) (float64, error) {
	w, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(w, 0) || math.IsNaN(w) {
		return 0, fmt.Errorf("%q: %w", s, errNonFinite)
	}
	return w, nil
}

// String renders the table back into tab-separated form, one row per line.
func (t *Table) String() string {
	var b bytes.Buffer
	for _, r := range t.Rows() {
		b.WriteString(strings.Join(r.Fields, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}
