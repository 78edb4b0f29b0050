package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const colGap = 2

// Table is an aligned text table. Footer rows are rendered below a second
// separator line.
type Table struct {
	Headers []string
	Rows    [][]string
	Footer  [][]string
	// Highlight is the index of a row rendered with the cursor style, or -1.
	Highlight int
}

// RenderTable renders a simple aligned table with a header separator line.
func RenderTable(headers []string, rows [][]string) string {
	return Table{Headers: headers, Rows: rows, Highlight: -1}.Render()
}

// Render pads each column to the widest visible cell across headers, rows
// and footer.
func (t Table) Render() string {
	if len(t.Headers) == 0 {
		return ""
	}
	cols := len(t.Headers)

	widths := make([]int, cols)
	measure := func(row []string) {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}
	for _, row := range t.Footer {
		measure(row)
	}

	var b strings.Builder
	styled := make([]string, cols)
	for i, h := range t.Headers {
		styled[i] = StyleHeader.Render(h)
	}
	writeRow(&b, styled, widths)
	writeSeparator(&b, widths)

	for i, row := range t.Rows {
		if i == t.Highlight {
			var line strings.Builder
			writeRow(&line, row, widths)
			b.WriteString(StyleCursor.Render(strings.TrimSuffix(line.String(), "\n")) + "\n")
			continue
		}
		writeRow(&b, row, widths)
	}

	if len(t.Footer) > 0 {
		writeSeparator(&b, widths)
		for _, row := range t.Footer {
			writeRow(&b, row, widths)
		}
	}
	return b.String()
}

func writeRow(b *strings.Builder, row []string, widths []int) {
	for i := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		b.WriteString(cell)
		if i < len(widths)-1 {
			pad := max(widths[i]-lipgloss.Width(cell), 0)
			b.WriteString(strings.Repeat(" ", pad+colGap))
		}
	}
	b.WriteString("\n")
}

func writeSeparator(b *strings.Builder, widths []int) {
	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
}
