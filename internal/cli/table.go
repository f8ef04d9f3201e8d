package cli

import (
	"regexp"
	"strings"
)

// ansiPattern matches SGR escape sequences so coloured cells do not
// distort column widths.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Table is a simple column-aligned table formatter.
type Table struct {
	headers []string
	rows    [][]string
	padding int
}

// NewTable creates a new table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		padding: 2,
	}
}

// AddRow adds a row to the table. Short rows are padded with empty
// cells; extra cells are dropped.
func (t *Table) AddRow(row []string) {
	cells := make([]string, len(t.headers))
	copy(cells, row)
	t.rows = append(t.rows, cells)
}

// Render formats and returns the table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = displayWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	gap := strings.Repeat(" ", t.padding)
	var b strings.Builder

	writeRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = padRight(cell, widths[i])
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, gap), " "))
		b.WriteString("\n")
	}

	writeRow(t.headers)

	sep := make([]string, len(t.headers))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)

	for _, row := range t.rows {
		writeRow(row)
	}

	return b.String()
}

// displayWidth returns the printed width of a cell, ignoring ANSI
// colour sequences.
func displayWidth(s string) int {
	return len(ansiPattern.ReplaceAllString(s, ""))
}

// padRight pads a cell with spaces to the desired display width.
func padRight(s string, width int) string {
	if w := displayWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
