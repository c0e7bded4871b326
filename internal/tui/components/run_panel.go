package components

import (
	"fmt"

	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/tui/themes"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RunState is the lifecycle of a profile's latest run.
type RunState int

// Run states.
const (
	RunIdle RunState = iota
	RunRunning
	RunDone
	RunFailed
)

// RunStatus is what the panel knows about one profile.
type RunStatus struct {
	Deck  string
	Text  string
	Ref   model.RunRef
	Stage int
	Of    int
	State RunState
}

// RunPanelModel shows one line per profile with the state of its latest run.
type RunPanelModel struct {
	theme    themes.Theme
	spinner  spinner.Model
	bar      progress.Model
	order    []model.ProfileID
	statuses map[model.ProfileID]RunStatus
	width    int
}

// NewRunPanelModel creates a panel for profiles in display order.
func NewRunPanelModel(theme themes.Theme, profiles []model.DeckProfile) RunPanelModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(theme.Primary)

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(20))
	bar.ShowPercentage = false

	m := RunPanelModel{
		theme:    theme,
		spinner:  sp,
		bar:      bar,
		statuses: make(map[model.ProfileID]RunStatus, len(profiles)),
		width:    80,
	}
	for _, p := range profiles {
		m.order = append(m.order, p.ID)
		m.statuses[p.ID] = RunStatus{Deck: p.DeckName, Text: "idle"}
	}
	return m
}

// Tick starts the spinner animation.
func (m RunPanelModel) Tick() tea.Cmd {
	return m.spinner.Tick
}

// Update advances the spinner.
func (m RunPanelModel) Update(msg tea.Msg) (RunPanelModel, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// Status returns a profile's run status.
func (m RunPanelModel) Status(id model.ProfileID) RunStatus {
	return m.statuses[id]
}

// Started marks a new run.
func (m *RunPanelModel) Started(ref model.RunRef) {
	s := m.statuses[ref.Profile]
	s.Ref = ref
	s.State = RunRunning
	s.Stage, s.Of = 0, 0
	s.Text = "starting"
	m.statuses[ref.Profile] = s
}

// Progress records a stage change of the current run.
func (m *RunPanelModel) Progress(p model.Progress) {
	s, ok := m.current(p.Run)
	if !ok {
		return
	}
	s.Stage, s.Of, s.Text = p.Stage, p.Of, p.Text
	m.statuses[p.Run.Profile] = s
}

// Finished records the terminal state of the current run.
func (m *RunPanelModel) Finished(ref model.RunRef, state RunState, text string) {
	s, ok := m.current(ref)
	if !ok {
		return
	}
	s.State = state
	s.Text = text
	m.statuses[ref.Profile] = s
}

// Resize sets the available width.
func (m *RunPanelModel) Resize(width int) {
	m.width = width
}

// View renders the panel.
func (m RunPanelModel) View() string {
	lines := make([]string, 0, len(m.order))
	for _, id := range m.order {
		lines = append(lines, m.renderStatus(id, m.statuses[id]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m RunPanelModel) renderStatus(id model.ProfileID, s RunStatus) string {
	name := m.theme.Bold.Render(fmt.Sprintf("%-8s", id))
	deck := m.theme.Color(m.theme.Muted).Render(fmt.Sprintf("%-20s", s.Deck))

	var icon, detail string
	switch s.State {
	case RunRunning:
		icon = m.spinner.View()
		pct := 0.0
		if s.Of > 0 {
			pct = float64(s.Stage) / float64(s.Of)
		}
		detail = m.bar.ViewAs(pct) + " " + m.theme.Normal.Render(s.Text)
	case RunDone:
		icon = m.theme.Color(m.theme.Success).Render("✓")
		detail = m.theme.Normal.Render(s.Text)
	case RunFailed:
		icon = m.theme.Color(m.theme.Error).Render("✗")
		detail = m.theme.Color(m.theme.Error).Render(s.Text)
	default:
		icon = m.theme.Color(m.theme.Muted).Render("·")
		detail = m.theme.Color(m.theme.Muted).Render(s.Text)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, icon, " ", name, " ", deck, " ", detail)
}

// current returns the status if ref is the profile's latest run.
func (m RunPanelModel) current(ref model.RunRef) (RunStatus, bool) {
	s, ok := m.statuses[ref.Profile]
	if !ok || s.Ref != ref {
		return RunStatus{}, false
	}
	return s, true
}
