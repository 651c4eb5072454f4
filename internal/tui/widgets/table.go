package widgets

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table is a fixed-layout text table. Columns are padded to the widest
// cell, rows past height are dropped. All measurements use terminal
// display width, not byte length, so multibyte cell values stay aligned.
type Table struct {
	Headers []string
	Rows    [][]string
	Cursor  int // highlighted row, -1 for none
}

func (t Table) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if len(t.Headers) == 0 {
		return "No data"
	}
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}
	pad := func(cells []string, marker string) string {
		parts := make([]string, 0, len(cells))
		for i, cell := range cells {
			if i < len(widths) {
				cell += strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell))
			}
			parts = append(parts, cell)
		}
		line := marker + " " + strings.Join(parts, "  ")
		return runewidth.Truncate(line, width, "")
	}
	lines := []string{pad(t.Headers, " ")}
	for i, row := range t.Rows {
		marker := " "
		if i == t.Cursor {
			marker = "▶"
		}
		lines = append(lines, pad(row, marker))
		if len(lines) >= height {
			break
		}
	}
	return strings.Join(lines, "\n")
}
