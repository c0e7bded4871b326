// Package config loads the importer's settings through viper and turns them
// into an immutable Config value.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/ankiflow/internal/anki"
	"github.com/Veraticus/ankiflow/internal/common"
	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ANKIFLOW_ANKI_URL.
const EnvPrefix = "ANKIFLOW"

// EnvKeyReplacer maps nested keys to environment names ("anki.url" to ANKIFLOW_ANKI_URL).
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// Config is the validated configuration. It is built once and only read afterwards.
type Config struct {
	Anki     AnkiConfig
	Decks    DeckConfig
	Import   ImportConfig
	Resolve  ResolveConfig
	Pipeline PipelineConfig
	Journal  JournalConfig
	Logging  LoggingConfig
}

// AnkiConfig configures the AnkiConnect connection.
type AnkiConfig struct {
	URL           string
	Model         string
	Version       int
	RetryAttempts int
	Timeout       time.Duration
}

// DeckConfig names the two target decks.
type DeckConfig struct {
	Passive  string
	Active   string
	KanjiTag string
}

// ImportConfig holds the default input files.
type ImportConfig struct {
	PassiveFile string
	ActiveFile  string
}

// ResolveConfig configures resolution actions.
type ResolveConfig struct {
	Separator string
}

// PipelineConfig configures the event bus and its consumers.
type PipelineConfig struct {
	PollInterval time.Duration
	EventBuffer  int
	// ActionLimit caps resolution actions running against Anki at once.
	ActionLimit int
}

// JournalConfig locates the run journal.
type JournalConfig struct {
	Path string
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("anki.url", "http://localhost:8765")
	v.SetDefault("anki.version", 6)
	v.SetDefault("anki.model", "Basic")
	v.SetDefault("anki.timeout", 30*time.Second)
	v.SetDefault("anki.retry_attempts", 3)

	v.SetDefault("decks.passive", "Japanese::Passive")
	v.SetDefault("decks.active", "Japanese::Active")
	v.SetDefault("decks.kanji_tag", "Kanji")

	v.SetDefault("import.passive_file", "")
	v.SetDefault("import.active_file", "")

	v.SetDefault("resolve.separator", "<hr>")

	v.SetDefault("pipeline.poll_interval", 100*time.Millisecond)
	v.SetDefault("pipeline.event_buffer", 256)
	v.SetDefault("pipeline.action_limit", 4)

	v.SetDefault("journal.path", "~/.config/ankiflow/journal.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
}

// Load reads every key from v and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Anki: AnkiConfig{
			URL:           strings.TrimRight(v.GetString("anki.url"), "/"),
			Model:         v.GetString("anki.model"),
			Version:       v.GetInt("anki.version"),
			RetryAttempts: v.GetInt("anki.retry_attempts"),
			Timeout:       v.GetDuration("anki.timeout"),
		},
		Decks: DeckConfig{
			Passive:  strings.TrimSpace(v.GetString("decks.passive")),
			Active:   strings.TrimSpace(v.GetString("decks.active")),
			KanjiTag: strings.TrimSpace(v.GetString("decks.kanji_tag")),
		},
		Import: ImportConfig{
			PassiveFile: ExpandPath(v.GetString("import.passive_file")),
			ActiveFile:  ExpandPath(v.GetString("import.active_file")),
		},
		Resolve: ResolveConfig{
			Separator: v.GetString("resolve.separator"),
		},
		Pipeline: PipelineConfig{
			PollInterval: v.GetDuration("pipeline.poll_interval"),
			EventBuffer:  v.GetInt("pipeline.event_buffer"),
			ActionLimit:  v.GetInt("pipeline.action_limit"),
		},
		Journal: JournalConfig{
			Path: ExpandPath(v.GetString("journal.path")),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
			File:   ExpandPath(v.GetString("logging.file")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the importer cannot work with.
func (c *Config) Validate() error {
	if c.Anki.URL == "" {
		return fmt.Errorf("%w: anki.url", common.ErrMissingConfig)
	}
	if !strings.HasPrefix(c.Anki.URL, "http://") && !strings.HasPrefix(c.Anki.URL, "https://") {
		return fmt.Errorf("%w: anki.url must be an http(s) URL, got %q", common.ErrInvalidConfig, c.Anki.URL)
	}
	if c.Anki.Model == "" {
		return fmt.Errorf("%w: anki.model", common.ErrMissingConfig)
	}
	if c.Anki.Version <= 0 {
		return fmt.Errorf("%w: anki.version must be positive", common.ErrInvalidConfig)
	}
	if c.Anki.RetryAttempts < 1 {
		return fmt.Errorf("%w: anki.retry_attempts must be at least 1", common.ErrInvalidConfig)
	}
	if c.Anki.Timeout <= 0 {
		return fmt.Errorf("%w: anki.timeout must be positive", common.ErrInvalidConfig)
	}

	if c.Decks.Passive == "" || c.Decks.Active == "" {
		return fmt.Errorf("%w: decks.passive and decks.active", common.ErrMissingConfig)
	}
	if c.Decks.Passive == c.Decks.Active {
		return fmt.Errorf("%w: passive and active decks must differ, both are %q", common.ErrInvalidConfig, c.Decks.Passive)
	}

	if c.Resolve.Separator == "" {
		return fmt.Errorf("%w: resolve.separator", common.ErrMissingConfig)
	}
	if c.Pipeline.PollInterval <= 0 {
		return fmt.Errorf("%w: pipeline.poll_interval must be positive", common.ErrInvalidConfig)
	}
	if c.Pipeline.EventBuffer <= 0 {
		return fmt.Errorf("%w: pipeline.event_buffer must be positive", common.ErrInvalidConfig)
	}
	if c.Pipeline.ActionLimit <= 0 {
		return fmt.Errorf("%w: pipeline.action_limit must be positive", common.ErrInvalidConfig)
	}

	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", common.ErrInvalidConfig, c.Logging.Format)
	}

	return nil
}

// Profiles returns the two fixed deck profiles, passive first.
func (c *Config) Profiles() []model.DeckProfile {
	return []model.DeckProfile{
		{
			ID:         model.ProfilePassive,
			DeckName:   c.Decks.Passive,
			ModelName:  c.Anki.Model,
			Classifier: model.ClassifierPassive,
			KanjiTag:   c.Decks.KanjiTag,
		},
		{
			ID:         model.ProfileActive,
			DeckName:   c.Decks.Active,
			ModelName:  c.Anki.Model,
			Classifier: model.ClassifierActive,
			KanjiTag:   c.Decks.KanjiTag,
		},
	}
}

// Profile returns the profile with the given id.
func (c *Config) Profile(id model.ProfileID) (model.DeckProfile, error) {
	for _, p := range c.Profiles() {
		if p.ID == id {
			return p, nil
		}
	}
	return model.DeckProfile{}, fmt.Errorf("%w: unknown profile %q", common.ErrInvalidConfig, id)
}

// InputFile returns the configured default input file of a profile.
func (c *Config) InputFile(id model.ProfileID) string {
	if id == model.ProfileActive {
		return c.Import.ActiveFile
	}
	return c.Import.PassiveFile
}

// AnkiClient returns the AnkiConnect client settings.
func (c *Config) AnkiClient() anki.Config {
	return anki.Config{
		URL:           c.Anki.URL,
		Version:       c.Anki.Version,
		Timeout:       c.Anki.Timeout,
		RetryAttempts: c.Anki.RetryAttempts,
	}
}

// ExpandPath expands a leading ~ and $VAR references.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}
	return filepath.Clean(os.ExpandEnv(path))
}
