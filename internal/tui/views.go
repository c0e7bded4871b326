package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	title := m.theme.Title.Render("ankiflow")
	runs := m.theme.Box.Width(max(m.width-4, 20)).Render(m.runs.View())

	header := m.theme.Subtitle.Render(fmt.Sprintf("Needs attention (%d)", m.list.Len()))
	items := m.theme.Box.Width(max(m.width-4, 20)).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, m.list.View()),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		runs,
		items,
		m.renderStatusBar(),
		m.theme.Help.Render(m.help.View(m.keymap)),
	)
}

func (m Model) renderStatusBar() string {
	if m.status == "" {
		return m.theme.StatusBar.Render(" ")
	}
	color := m.theme.Error
	if m.statusOK {
		color = m.theme.Info
	}
	return m.theme.StatusBar.Foreground(color).Render(m.status)
}

// handleResize adjusts component sizes when the terminal resizes.
func (m *Model) handleResize() {
	m.help.Width = m.width
	m.runs.Resize(m.width - 6)

	// title (2) + run panel (profiles + 2) + list header and border (3) + status (1) + help
	helpHeight := 1
	if m.help.ShowAll {
		helpHeight = 4
	}
	used := 2 + len(m.config.Profiles) + 2 + 3 + 1 + helpHeight
	m.list.Resize(m.width-6, m.height-used)
}
