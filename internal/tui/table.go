package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated cell content.
const Ellipsis = "…"

// Truncate shortens s to at most width terminal cells, ending with an
// ellipsis when anything was cut. Wide runes count as two cells. A width
// below 1 disables truncation.
func Truncate(s string, width int) string {
	if width < 1 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

// SingleLine collapses runs of whitespace, including newlines, to one space
// so multi-line text fits in a table cell.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// writeTable renders headers and rows as aligned columns. Widths are
// measured in terminal cells so CJK text and emoji stay aligned.
func writeTable(w io.Writer, styles *TableStyles, headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}

	headerParts := make([]string, 0, len(headers))
	for i, h := range headers {
		headerParts = append(headerParts, styles.Header.Render(pad(h, widths, i)))
	}
	_, _ = fmt.Fprintln(w, strings.Join(headerParts, "  "))

	for _, row := range rows {
		parts := make([]string, 0, len(headers))
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			parts = append(parts, styles.Cell.Render(pad(cell, widths, i)))
		}
		_, _ = fmt.Fprintln(w, strings.Join(parts, "  "))
	}
}

// pad fills s to column i's width. The last column is left ragged.
func pad(s string, widths []int, i int) string {
	if i == len(widths)-1 {
		return s
	}
	return runewidth.FillRight(s, widths[i])
}
