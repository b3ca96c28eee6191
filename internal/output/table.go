package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Table is a simple aligned text table.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
	marks   map[int]*color.Color
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = width(h)
	}
	return &Table{headers: headers, widths: widths, marks: map[int]*color.Color{}}
}

// AddRow appends a row; cells beyond the header count are dropped.
func (t *Table) AddRow(cells ...string) {
	for i, cell := range cells {
		if i < len(t.widths) && width(cell) > t.widths[i] {
			t.widths[i] = width(cell)
		}
	}
	t.rows = append(t.rows, cells)
}

// AddMarkedRow appends a row printed in red.
func (t *Table) AddMarkedRow(cells ...string) {
	t.marks[len(t.rows)] = color.New(color.FgRed)
	t.AddRow(cells...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Render writes the table to w.
func (t *Table) Render(w io.Writer) {
	header := color.New(color.FgCyan, color.Bold)
	for i, h := range t.headers {
		header.Fprint(w, pad(h, t.widths[i]))
	}
	fmt.Fprintln(w)

	for i := range t.headers {
		fmt.Fprint(w, strings.Repeat("-", t.widths[i])+"  ")
	}
	fmt.Fprintln(w)

	for r, row := range t.rows {
		line := &strings.Builder{}
		for i, cell := range row {
			if i < len(t.widths) {
				line.WriteString(pad(cell, t.widths[i]))
			}
		}
		if c, ok := t.marks[r]; ok {
			c.Fprintln(w, strings.TrimRight(line.String(), " "))
			continue
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

func pad(s string, w int) string {
	return s + strings.Repeat(" ", w-width(s)+2)
}

func width(s string) int { return utf8.RuneCountInString(s) }
