package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Placeholder is printed for empty cells.
const Placeholder = "-"

// Table renders rows of data in aligned columns. Rows are buffered until
// Flush so a table with no rows can print a note instead of a bare header.
type Table struct {
	out     io.Writer
	headers []string
	rows    [][]string
	empty   string
}

// NewTable creates a new table with the given column headers.
func NewTable(out io.Writer, headers ...string) *Table {
	return &Table{out: out, headers: headers}
}

// WhenEmpty sets the message printed by Flush when no rows were added.
func (t *Table) WhenEmpty(msg string) *Table {
	t.empty = msg
	return t
}

// Row appends a row of values. The number of values should match the number of headers.
func (t *Table) Row(values ...any) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Cell(v)
	}
	t.rows = append(t.rows, parts)
}

// Len returns the number of buffered rows.
func (t *Table) Len() int { return len(t.rows) }

// Flush writes the header and every buffered row.
func (t *Table) Flush() error {
	if len(t.rows) == 0 && t.empty != "" {
		_, err := fmt.Fprintln(t.out, t.empty)
		return err
	}
	tw := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(t.headers, "\t"))
	for _, r := range t.rows {
		_, _ = fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	t.rows = nil
	return tw.Flush()
}

// Cell formats a value for display. Slices are comma-joined and empty
// values render as Placeholder.
func Cell(v any) string {
	var s string
	switch v := v.(type) {
	case nil:
	case string:
		s = v
	case []string:
		s = strings.Join(v, ",")
	case bool:
		s = "no"
		if v {
			s = "yes"
		}
	default:
		s = fmt.Sprintf("%v", v)
	}
	if s == "" {
		return Placeholder
	}
	return s
}
