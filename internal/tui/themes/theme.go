// Package themes holds the TUI color schemes.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Normal      lipgloss.Style
	Bold        lipgloss.Style
	Selected    lipgloss.Style
	Box         lipgloss.Style
	StatusBar   lipgloss.Style
	Help        lipgloss.Style
	Primary     lipgloss.Color
	Success     lipgloss.Color
	Warning     lipgloss.Color
	Error       lipgloss.Color
	Info        lipgloss.Color
	Muted       lipgloss.Color
	Border      lipgloss.Color
	Foreground  lipgloss.Color
	Highlighted lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary:     lipgloss.Color("#5b8def"),
	Success:     lipgloss.Color("#10b981"),
	Warning:     lipgloss.Color("#f59e0b"),
	Error:       lipgloss.Color("#ef4444"),
	Info:        lipgloss.Color("#3b82f6"),
	Muted:       lipgloss.Color("#737373"),
	Border:      lipgloss.Color("#404040"),
	Foreground:  lipgloss.Color("#fafafa"),
	Highlighted: lipgloss.Color("#262626"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5b8def")).
		MarginBottom(1),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Bold: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Selected: lipgloss.NewStyle().
		Background(lipgloss.Color("#5b8def")).
		Foreground(lipgloss.Color("#fafafa")).
		Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
	StatusBar: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")).
		Padding(0, 1),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
}

// Color returns a foreground style for c.
func (t Theme) Color(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}
