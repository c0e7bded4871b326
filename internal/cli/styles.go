// Package cli renders the non-interactive importer output with lipgloss.
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// AccentColor is used for titles and box headers (Anki blue).
	AccentColor = lipgloss.Color("#5B8DEF")
	// AddedColor marks notes that reached Anki.
	AddedColor = lipgloss.Color("#4ECDC4")
	// AttentionColor marks duplicates the user may want to resolve.
	AttentionColor = lipgloss.Color("#FFE66D")
	// FailureColor marks failed writes, unparsable lines and errors.
	FailureColor = lipgloss.Color("#FF6B6B")
	// NoteColor marks tags and informational notices.
	NoteColor = lipgloss.Color("#95E1D3")
	// DimColor is used for item ids, note references and totals.
	DimColor = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(AddedColor)
	WarningStyle = lipgloss.NewStyle().Foreground(AttentionColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(FailureColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(NoteColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(DimColor)

	// BoxStyle frames one run summary.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	CardIcon    = "🗂️"
	ArrowIcon   = "→"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the card icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(CardIcon + " " + title)
}

// formatCount renders a bucket heading such as "⚠️ 3 already in Anki".
func formatCount(style lipgloss.Style, icon string, n int, label string) string {
	return fmt.Sprintf("%s %d %s", style.Render(icon), n, label)
}

// RenderBox renders content under a title inside a rounded border.
func RenderBox(title, content string) string {
	header := TitleStyle.UnsetMargins().Render(title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, content))
}
