package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"vastustructural/internal/lifecycle"
	"vastustructural/internal/model"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

func categoryStyle(c lifecycle.Category) lipgloss.Style {
	switch c {
	case lifecycle.CategorySuccess:
		return SuccessStyle
	case lifecycle.CategoryWarning:
		return WarningStyle
	}
	return InfoStyle
}

// badge renders a status label in its category color.
func badge(s model.Status) string {
	meta := lifecycle.Metadata(s)
	return categoryStyle(meta.Category).Render(meta.Label)
}

// table lays rows out in left-aligned columns. Widths are measured on the unstyled cells,
// so styling is applied per cell afterwards through style.
func table(header []string, rows [][]string, style func(row, col int, cell string) string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for i, h := range header {
		b.WriteString(HeaderStyle.Render(fmt.Sprintf("%-*s", widths[i], h)))
		b.WriteString("  ")
	}
	b.WriteString("\n")
	for r, row := range rows {
		for i, cell := range row {
			padded := fmt.Sprintf("%-*s", widths[i], cell)
			if style != nil {
				padded = style(r, i, padded)
			}
			b.WriteString(padded)
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	return b.String()
}
