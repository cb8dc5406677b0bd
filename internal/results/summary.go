package results

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Padding(0, 1)
	averageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Padding(0, 1)
)

// SummaryRows returns the header and rows printed by PrintSummary: the raw
// columns followed by one average column per prompt type.
func SummaryRows(t *Table) ([]string, [][]string) {
	types := t.PromptTypes()
	headers := []string{"Model"}
	for _, k := range t.keys {
		headers = append(headers, k.String())
	}
	for _, pt := range types {
		headers = append(headers, AverageColumn(pt))
	}

	rows := make([][]string, 0, len(t.models))
	for _, m := range t.models {
		row := []string{m}
		for _, k := range t.keys {
			row = append(row, t.Cell(m, k).String())
		}
		for _, pt := range types {
			row = append(row, t.Average(m, pt).String())
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// PrintSummary renders the table with durations in seconds.
func PrintSummary(out io.Writer, t *Table) {
	headers, rows := SummaryRows(t)
	rawCols := len(t.keys)

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(rows) && col < len(rows[row]) && rows[row][col] == Missing.String() {
				return missingStyle
			}
			if col > rawCols {
				return averageStyle
			}
			return cellStyle
		})

	fmt.Fprintln(out, "Latency summary (seconds):")
	fmt.Fprintln(out, tbl.Render())
	if n := t.MissingCells(); n > 0 {
		fmt.Fprintf(out, "%d probe(s) failed; shown as %s\n", n, Missing.String())
	}
}
