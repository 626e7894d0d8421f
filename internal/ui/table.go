package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/untoldecay/mentor/internal/types"
)

// Table Styles
var (
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorAccent).
				Align(lipgloss.Center)

	TableHintStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	TableBorderStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	tableCellStyle  = lipgloss.NewStyle().Padding(0, 1)
	tablePriceStyle = tableCellStyle.Align(lipgloss.Right)
)

// newTable creates a table with the shared border styling.
func newTable(width int) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(TableBorderStyle).
		Width(width)
}

// RenderMenuTable renders items as Name | Price | Description | Updated.
// formatPrice renders the price column.
func RenderMenuTable(items []*types.MenuItem, formatPrice func(int64) string, width int) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.Name,
			formatPrice(item.Price),
			Truncate(item.Description, width/2),
			formatUpdated(item),
		})
	}
	return newTable(width).
		Headers("Name", "Price", "Description", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle.Padding(0, 1)
			case col == 1:
				return tablePriceStyle
			case col == 3:
				return tableCellStyle.Foreground(ColorMuted)
			default:
				return tableCellStyle
			}
		}).
		String()
}

// RenderQATable renders entries as Question | Answer | Updated.
func RenderQATable(entries []*types.QAEntry, width int) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		updated := ""
		if !e.UpdatedAt.IsZero() {
			updated = types.FormatTimestamp(e.UpdatedAt)
		}
		rows = append(rows, []string{
			Truncate(e.Question, width/3),
			Truncate(e.Answer, width/3),
			updated,
		})
	}
	return newTable(width).
		Headers("Question", "Answer", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle.Padding(0, 1)
			case col == 2:
				return tableCellStyle.Foreground(ColorMuted)
			default:
				return tableCellStyle
			}
		}).
		String()
}

func formatUpdated(item *types.MenuItem) string {
	if item.UpdatedAt.IsZero() {
		return ""
	}
	return types.FormatTimestamp(item.UpdatedAt)
}

// Truncate shortens s to at most max runes, marking the cut with "...".
func Truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
