package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Terminal colors (256-color palette)
var (
	colorCyan = lipgloss.Color("36")
	colorGray = lipgloss.Color("245")
	colorDim  = lipgloss.Color("240")
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	nameStyle    = lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	defaultLabel = lipgloss.NewStyle().Foreground(colorDim)
)

// renderTable writes a rounded table whose first column is highlighted.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return nameStyle
			default:
				return cellStyle
			}
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
