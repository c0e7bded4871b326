package tui

import (
	"context"
	"time"

	"github.com/Veraticus/ankiflow/internal/engine"
	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/service"
	"github.com/Veraticus/ankiflow/internal/tui/themes"
)

// LineLoader reads the input lines for a profile.
type LineLoader func(ctx context.Context, profile model.ProfileID) ([]string, error)

// Config holds TUI configuration.
type Config struct {
	Theme        themes.Theme
	Journal      service.RunJournal
	Runner       *engine.Runner
	Executor     *engine.Executor
	Bus          *engine.Bus
	LoadLines    LineLoader
	Profiles     []model.DeckProfile
	PollInterval time.Duration
	Width        int
	Height       int
	AutoStart    bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:        themes.Default,
		Width:        100,
		Height:       30,
		PollInterval: 100 * time.Millisecond,
	}
}

// WithEngine sets the background workers and the bus they report through.
func WithEngine(runner *engine.Runner, executor *engine.Executor, bus *engine.Bus) Option {
	return func(c *Config) {
		c.Runner = runner
		c.Executor = executor
		c.Bus = bus
	}
}

// WithJournal records finished runs and actions.
func WithJournal(journal service.RunJournal) Option {
	return func(c *Config) {
		c.Journal = journal
	}
}

// WithProfiles sets the importable deck profiles in display order.
func WithProfiles(profiles ...model.DeckProfile) Option {
	return func(c *Config) {
		c.Profiles = profiles
	}
}

// WithLineLoader sets where import input comes from.
func WithLineLoader(load LineLoader) Option {
	return func(c *Config) {
		c.LoadLines = load
	}
}

// WithAutoStart imports every profile as soon as the TUI starts.
func WithAutoStart(enabled bool) Option {
	return func(c *Config) {
		c.AutoStart = enabled
	}
}

// WithPollInterval sets how often the event bus is drained.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval > 0 {
			c.PollInterval = interval
		}
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
