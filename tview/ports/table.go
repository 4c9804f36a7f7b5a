package ports

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"
)

// MaxCellWidth truncates long cells so a row fits on one terminal line.
const MaxCellWidth = 24

// FormatTable renders a window as fixed-width text: a header, a rule, the
// visible rows and a pager line.
func FormatTable(title string, columns []engine.ColumnSpec, w engine.Window) string {
	widths := make([]int, len(columns))
	cells := make([][]string, len(w.Visible))
	for i, c := range columns {
		widths[i] = utf8.RuneCountInString(c.Label)
	}
	for r, row := range w.Visible {
		cells[r] = make([]string, len(columns))
		for i, c := range columns {
			s := truncate(engine.Stringify(row.Get(c.ID)), MaxCellWidth)
			cells[r][i] = s
			widths[i] = max(widths[i], utf8.RuneCountInString(s))
		}
	}

	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "\n%s:\n", title)
	}
	total := 0
	for i, c := range columns {
		b.WriteString(pad(c.Label, widths[i]))
		total += widths[i] + 1
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", max(total-1, 0)))
	b.WriteString("\n")
	for _, row := range cells {
		for i, s := range row {
			b.WriteString(pad(s, widths[i]))
		}
		b.WriteString("\n")
	}
	if w.Total == 0 {
		b.WriteString("No records found\n")
		return b.String()
	}
	first := w.PageIndex*w.PageSize + 1
	last := w.PageIndex*w.PageSize + len(w.Visible)
	fmt.Fprintf(&b, "Rows %d-%d of %d, page %d of %d\n", first, last, w.Total, w.PageIndex+1, w.PageCount)
	return b.String()
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-n) + " "
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-3]) + "..."
}
