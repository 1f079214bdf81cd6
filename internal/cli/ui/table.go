package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// tint builds a color step, disabled when color output is off.
func tint(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// Table lays out rows under aligned column headers.
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a table with the given column headers.
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{writer: w, headers: headers, noColor: noColor}
}

// AddRow appends one row. Cells beyond the column count are dropped.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the headers, a rule, and the rows. A table with no headers
// renders nothing.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}
	widths := t.columnWidths()

	writeCells(t.writer, t.headers, widths, tint(t.noColor, color.Bold, color.FgCyan))

	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("─", w)
	}
	tint(t.noColor, color.FgHiBlack).Fprintln(t.writer, strings.Join(rules, "  "))

	for _, row := range t.rows {
		writeCells(t.writer, row, widths, nil)
	}
}

// columnWidths sizes each column to its widest cell, headers included.
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

// writeCells writes one row padded to the column widths, colored when c is
// not nil.
func writeCells(w io.Writer, cells []string, widths []int, c *color.Color) {
	padded := make([]string, len(widths))
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		padded[i] = padRight(cell, widths[i])
	}
	line := strings.Join(padded, "  ")
	if c != nil {
		c.Fprintln(w, line)
		return
	}
	fmt.Fprintln(w, line)
}

// padRight pads s with spaces to width. Longer strings pass through.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// KeyValueTable lines up key: value pairs on a common colon column.
type KeyValueTable struct {
	writer  io.Writer
	rows    [][2]string
	noColor bool
}

// NewKeyValueTable creates an empty key/value block.
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, noColor: noColor}
}

// AddRow appends one key/value pair.
func (t *KeyValueTable) AddRow(key, value string) {
	t.rows = append(t.rows, [2]string{key, value})
}

// Render writes the pairs with keys padded to a shared width. An empty table
// renders nothing.
func (t *KeyValueTable) Render() {
	if len(t.rows) == 0 {
		return
	}
	keyWidth := 0
	for _, row := range t.rows {
		if len(row[0]) > keyWidth {
			keyWidth = len(row[0])
		}
	}
	keys := tint(t.noColor, color.FgCyan)
	for _, row := range t.rows {
		keys.Fprint(t.writer, padRight(row[0]+":", keyWidth+1))
		fmt.Fprintf(t.writer, " %s\n", row[1])
	}
}

// Section groups lines under a bold title, indented two spaces.
type Section struct {
	writer  io.Writer
	title   string
	lines   []string
	noColor bool
}

// NewSection creates a section with the given title.
func NewSection(w io.Writer, title string, noColor bool) *Section {
	return &Section{writer: w, title: title, noColor: noColor}
}

// AddLine appends one content line.
func (s *Section) AddLine(line string) {
	s.lines = append(s.lines, line)
}

// Render writes the title, the indented lines, and a trailing blank line.
func (s *Section) Render() {
	tint(s.noColor, color.Bold, color.FgCyan).Fprintln(s.writer, s.title)
	for _, line := range s.lines {
		fmt.Fprintf(s.writer, "  %s\n", line)
	}
	fmt.Fprintln(s.writer)
}

// List renders items behind bullets or 1-based numbers.
type List struct {
	writer   io.Writer
	items    []string
	numbered bool
	noColor  bool
}

// NewList creates a bulleted list, or a numbered one.
func NewList(w io.Writer, numbered, noColor bool) *List {
	return &List{writer: w, numbered: numbered, noColor: noColor}
}

// AddItem appends one item.
func (l *List) AddItem(item string) {
	l.items = append(l.items, item)
}

// Render writes the items. An empty list renders nothing.
func (l *List) Render() {
	markers := tint(l.noColor, color.FgCyan)
	for i, item := range l.items {
		if l.numbered {
			markers.Fprintf(l.writer, "%d. ", i+1)
		} else {
			markers.Fprint(l.writer, "• ")
		}
		fmt.Fprintln(l.writer, item)
	}
}

// Divider writes a horizontal rule. A zero width falls back to 80 columns.
func Divider(w io.Writer, width int, noColor bool) {
	if width == 0 {
		width = 80
	}
	tint(noColor, color.FgHiBlack).Fprintln(w, strings.Repeat("─", width))
}

// Header writes a title over a rule sized to it.
func Header(w io.Writer, title string, noColor bool) {
	tint(noColor, color.Bold, color.FgCyan).Fprintln(w, title)
	Divider(w, len(title), noColor)
}
