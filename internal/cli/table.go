package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	cellStyle     = lipgloss.NewStyle().PaddingRight(2)
	lastCellStyle = lipgloss.NewStyle()
)

// writeTable renders rows as borderless, left-aligned columns. headers may
// be nil.
func writeTable(w io.Writer, headers []string, rows [][]string) error {
	columns := len(headers)
	for _, r := range rows {
		columns = max(columns, len(r))
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == columns-1 {
				return lastCellStyle
			}
			return cellStyle
		}).
		Rows(rows...)
	if len(headers) > 0 {
		t = t.Headers(headers...)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
