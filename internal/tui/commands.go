package tui

import (
	"context"
	"time"

	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/storage"
	tea "github.com/charmbracelet/bubbletea"
)

// tick schedules the next bus drain.
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.config.PollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadLines reads a profile's input off the update loop.
func (m Model) loadLines(profile model.ProfileID) tea.Cmd {
	load := m.config.LoadLines
	ctx := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		lines, err := load(ctx, profile)
		return linesLoadedMsg{profile: profile, lines: lines, err: err}
	}
}

// journalRun records a terminal run event.
func (m Model) journalRun(event model.ImportEvent, profile model.ProfileID) tea.Cmd {
	if m.config.Journal == nil {
		return nil
	}
	record, ok := storage.RunFromEvent(event, m.profiles[profile].DeckName, time.Now())
	if !ok {
		return nil
	}
	journal := m.config.Journal
	ctx := context.WithoutCancel(m.ctx)
	return func() tea.Msg {
		return journalWrittenMsg{what: "run " + string(profile), err: journal.RecordRun(ctx, record)}
	}
}

// journalAction records an action outcome.
func (m Model) journalAction(done model.ActionDone) tea.Cmd {
	if m.config.Journal == nil {
		return nil
	}
	record := storage.ActionFromEvent(done, time.Now())
	journal := m.config.Journal
	ctx := context.WithoutCancel(m.ctx)
	return func() tea.Msg {
		return journalWrittenMsg{what: "action " + string(done.ItemID), err: journal.RecordAction(ctx, record)}
	}
}
