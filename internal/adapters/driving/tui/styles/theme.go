// Package styles provides the colours and lipgloss styles of the monitor.
package styles

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette.
type Theme struct {
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Live    lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Border  lipgloss.Color
}

// DefaultTheme returns the default palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:  lipgloss.Color("#FF7A59"), // Coral
		Text:    lipgloss.Color("#E6E6E6"),
		Muted:   lipgloss.Color("#7A7F8C"),
		Live:    lipgloss.Color("#5FD068"), // Green
		Warning: lipgloss.Color("#F5C542"),
		Error:   lipgloss.Color("#F0506E"),
		Border:  lipgloss.Color("#3D4250"),
	}
}

// Styles are the pre-built styles of the monitor.
type Styles struct {
	theme *Theme

	Title  lipgloss.Style
	Status lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
	Frame  lipgloss.Style
	Table  table.Styles
}

// NewStyles builds styles from theme. A nil theme selects DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	tableStyles := table.DefaultStyles()
	tableStyles.Header = tableStyles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(true).
		Foreground(theme.Accent)
	tableStyles.Cell = tableStyles.Cell.Foreground(theme.Text)
	tableStyles.Selected = tableStyles.Selected.
		Foreground(lipgloss.Color("#1B1D23")).
		Background(theme.Accent).
		Bold(false)

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Accent),

		Status: lipgloss.NewStyle().
			Foreground(theme.Live),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Frame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Table: tableStyles,
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette behind the styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
