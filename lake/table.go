package lake

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractCells scans an HTML table fragment and returns the text of every
// td/th cell grouped by row. Only rows closed by </tr> are returned, so
// truncated markup yields a partial grid instead of an error.
func ExtractCells(fragment string) [][]string {
	z := html.NewTokenizer(strings.NewReader(fragment))

	var (
		grid   [][]string
		row    []string
		cell   strings.Builder
		inCell bool
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; either way the scan is over
			return grid
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "td", "th":
				inCell = true
				cell.Reset()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "td", "th":
				if inCell {
					row = append(row, strings.TrimSpace(cell.String()))
					inCell = false
				}
			case "tr":
				grid = append(grid, row)
				row = nil
			}
		case html.TextToken:
			if inCell {
				cell.Write(z.Text())
			}
		}
	}
}

// MarkdownTable renders a cell grid as a pipe table. A header separator is
// inserted after the first row when the grid has more than one row; its
// column count comes from the first row.
func MarkdownTable(grid [][]string) string {
	lines := make([]string, 0, len(grid)+1)
	for _, row := range grid {
		lines = append(lines, pipeRow(row))
	}

	if len(lines) > 1 {
		separator := make([]string, len(grid[0]))
		for i := range separator {
			separator[i] = "---"
		}
		lines = append(lines[:1], append([]string{pipeRow(separator)}, lines[1:]...)...)
	}

	return strings.Join(lines, "\n")
}

func pipeRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}
