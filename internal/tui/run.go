package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/storage"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the TUI until the user quits, then waits for in-flight runs and
// actions and journals whatever they reported after the screen closed.
func Run(ctx context.Context, opts ...Option) error {
	m, err := New(ctx, opts...)
	if err != nil {
		return err
	}

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	var runErr error
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		runErr = fmt.Errorf("TUI error: %w", err)
	}

	// Workers may still be publishing; keep the bus moving until they stop.
	events := m.config.Bus.DrainWhile(m.config.PollInterval, func() {
		m.config.Runner.Wait()
		m.config.Executor.Wait()
	})
	m.flushJournal(context.WithoutCancel(ctx), events)

	return runErr
}

// flushJournal records terminal events nobody saw on screen.
func (m Model) flushJournal(ctx context.Context, events []model.ImportEvent) {
	if m.config.Journal == nil {
		return
	}
	decks := make(map[model.ProfileID]string, len(m.profiles))
	for id, p := range m.profiles {
		decks[id] = p.DeckName
	}
	if err := storage.RecordEvents(ctx, m.config.Journal, events, decks, time.Now()); err != nil {
		slog.Warn("Failed to journal events after exit", "error", err)
	}
}
