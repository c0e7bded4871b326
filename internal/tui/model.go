// Package tui is the interactive consumer of the import pipeline: it starts
// runs, shows their progress and lets the user resolve what they left behind.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/ankiflow/internal/common"
	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/tui/components"
	"github.com/Veraticus/ankiflow/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the main TUI state. It is the only reader of the event bus.
type Model struct {
	ctx      context.Context
	theme    themes.Theme
	profiles map[model.ProfileID]model.DeckProfile
	help     help.Model
	status   string
	keymap   KeyMap
	config   Config
	list     components.ItemListModel
	runs     components.RunPanelModel
	width    int
	height   int
	statusOK bool
	quitting bool
}

// New creates a model. Runner, executor, bus, a line loader and at least one
// profile are required.
func New(ctx context.Context, opts ...Option) (Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	switch {
	case cfg.Runner == nil || cfg.Executor == nil || cfg.Bus == nil:
		return Model{}, fmt.Errorf("%w: runner, executor and bus", common.ErrMissingConfig)
	case cfg.LoadLines == nil:
		return Model{}, fmt.Errorf("%w: line loader", common.ErrMissingConfig)
	case len(cfg.Profiles) == 0:
		return Model{}, fmt.Errorf("%w: deck profiles", common.ErrMissingConfig)
	}

	profiles := make(map[model.ProfileID]model.DeckProfile, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		profiles[p.ID] = p
	}

	m := Model{
		ctx:      ctx,
		config:   cfg,
		theme:    cfg.Theme,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		profiles: profiles,
		list:     components.NewItemListModel(cfg.Theme),
		runs:     components.NewRunPanelModel(cfg.Theme, cfg.Profiles),
		width:    cfg.Width,
		height:   cfg.Height,
	}
	m.handleResize()
	return m, nil
}

// Init starts polling and, if configured, every import.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tick(), m.runs.Tick()}
	if m.config.AutoStart {
		for _, p := range m.config.Profiles {
			cmds = append(cmds, m.loadLines(p.ID))
		}
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case tickMsg:
		var cmds []tea.Cmd
		for _, event := range m.config.Bus.Drain() {
			cmds = append(cmds, m.handleEvent(event))
		}
		if !m.quitting {
			cmds = append(cmds, m.tick())
		}
		return m, tea.Batch(cmds...)

	case linesLoadedMsg:
		m.startRun(msg)
		return m, nil

	case journalWrittenMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("Could not journal %s: %v", msg.what, msg.err))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.runs, cmd = m.runs.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.handleResize()
	case key.Matches(msg, m.keymap.Up):
		m.list.MoveUp()
	case key.Matches(msg, m.keymap.Down):
		m.list.MoveDown()
	case key.Matches(msg, m.keymap.ImportPassive):
		return m.requestImport(model.ProfilePassive)
	case key.Matches(msg, m.keymap.ImportActive):
		return m.requestImport(model.ProfileActive)
	case key.Matches(msg, m.keymap.Merge):
		m.startAction(model.ActionMerge)
	case key.Matches(msg, m.keymap.Reschedule):
		m.startAction(model.ActionReschedule)
	case key.Matches(msg, m.keymap.Defer):
		m.startAction(model.ActionDefer)
	case key.Matches(msg, m.keymap.Dismiss):
		m.dismiss()
	}
	return nil
}

func (m *Model) requestImport(id model.ProfileID) tea.Cmd {
	if _, ok := m.profiles[id]; !ok {
		m.setError(fmt.Sprintf("Profile %s is not configured", id))
		return nil
	}
	if m.config.Runner.Running(id) {
		m.setError(fmt.Sprintf("An import into %s is already running", id))
		return nil
	}
	m.setInfo(fmt.Sprintf("Loading %s input...", id))
	return m.loadLines(id)
}

func (m *Model) startRun(msg linesLoadedMsg) {
	if msg.err != nil {
		m.setError(fmt.Sprintf("Could not read %s input: %v", msg.profile, msg.err))
		return
	}
	ref, err := m.config.Runner.Start(m.ctx, m.profiles[msg.profile], msg.lines)
	if err != nil {
		m.setError(fmt.Sprintf("Could not start %s import: %v", msg.profile, err))
		return
	}
	m.runs.Started(ref)
	m.setInfo(fmt.Sprintf("Importing %d lines into %s", len(msg.lines), m.profiles[msg.profile].DeckName))
}

func (m *Model) startAction(kind model.ActionKind) {
	item, ok := m.list.Selected()
	if !ok {
		return
	}
	if item.Busy {
		m.setError(fmt.Sprintf("%s is still being processed", item.ID))
		return
	}

	if err := m.config.Executor.Start(m.ctx, item.Target(), kind); err != nil {
		if errors.Is(err, common.ErrNoRemoteIdentity) {
			m.setError(fmt.Sprintf("%s has no note in Anki; only dismiss applies", item.ID))
			return
		}
		m.setError(fmt.Sprintf("Could not %s %s: %v", kind, item.ID, err))
		return
	}

	m.list.Set(item.ID, func(i *components.Item) {
		i.Busy = true
		i.LastError = ""
	})
	m.setInfo(fmt.Sprintf("Running %s on %s...", kind, item.ID))
}

func (m *Model) dismiss() {
	item, ok := m.list.Selected()
	if !ok {
		return
	}
	if item.Busy {
		m.setError(fmt.Sprintf("%s is still being processed", item.ID))
		return
	}
	m.list.Remove(item.ID)
	m.setInfo(fmt.Sprintf("Dismissed %s", item.ID))
}

// handleEvent applies one bus event to the view.
func (m *Model) handleEvent(event model.ImportEvent) tea.Cmd {
	switch e := event.(type) {
	case model.Progress:
		m.runs.Progress(e)
		return nil

	case model.Complete:
		if m.runs.Status(e.Run.Profile).Ref == e.Run {
			m.runs.Finished(e.Run, components.RunDone, e.Summary)
			m.list.ReplaceProfile(e.Run.Profile, components.ItemsFromPartition(e.Partition))
			m.setInfo(fmt.Sprintf("%s import finished: %s", e.Run.Profile, e.Summary))
		}
		return m.journalRun(e, e.Run.Profile)

	case model.Error:
		m.runs.Finished(e.Run, components.RunFailed, e.Message)
		m.setError(fmt.Sprintf("%s import failed: %s", e.Run.Profile, e.Message))
		return m.journalRun(e, e.Run.Profile)

	case model.ActionDone:
		if e.Err == nil {
			m.list.Settle(e.ItemID, "")
			m.setInfo(fmt.Sprintf("%s %s done", e.Kind, e.ItemID))
		} else {
			m.list.Settle(e.ItemID, e.Err.Error())
			m.setError(fmt.Sprintf("%s %s failed: %v", e.Kind, e.ItemID, e.Err))
		}
		return m.journalAction(e)
	}
	return nil
}

func (m *Model) setInfo(s string) {
	m.status = s
	m.statusOK = true
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusOK = false
}

// Items returns the live result items.
func (m Model) Items() []components.Item {
	return m.list.Items()
}

// Status returns the status line text.
func (m Model) Status() string {
	return m.status
}
