package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/ankiflow/internal/anki"
	"github.com/Veraticus/ankiflow/internal/common"
	"github.com/Veraticus/ankiflow/internal/config"
	"github.com/Veraticus/ankiflow/internal/model"
)

// connect creates the AnkiConnect client and checks that Anki answers.
func connect(ctx context.Context, cfg *config.Config) (*anki.Client, int, error) {
	client, err := anki.NewClient(cfg.AnkiClient())
	if err != nil {
		return nil, 0, common.NewUserError("Invalid AnkiConnect settings", err)
	}

	v, err := client.Version(ctx)
	if err != nil {
		return nil, 0, common.NewUserError(
			fmt.Sprintf("Anki is not reachable at %s. Ensure Anki is running with AnkiConnect", cfg.Anki.URL), err)
	}
	if v < cfg.Anki.Version {
		slog.Warn("AnkiConnect is older than expected", "version", v, "expected", cfg.Anki.Version)
	}
	return client, v, nil
}

// readLines reads an input file as lines. Line endings are normalized; blank
// lines stay so line numbers match the file.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{}, nil
	}
	return strings.Split(text, "\n"), nil
}

// selectProfiles returns the profiles named by flag, or all of them when it is empty.
func selectProfiles(cfg *config.Config, flag string) ([]model.DeckProfile, error) {
	if strings.TrimSpace(flag) == "" {
		return cfg.Profiles(), nil
	}
	id, err := model.ParseProfileID(flag)
	if err != nil {
		return nil, common.NewUserError("Unknown profile", err)
	}
	profile, err := cfg.Profile(id)
	if err != nil {
		return nil, err
	}
	return []model.DeckProfile{profile}, nil
}

// inputFiles resolves the input file of each profile, failing on any that has none.
func inputFiles(cfg *config.Config, profiles []model.DeckProfile) (map[model.ProfileID]string, error) {
	files := make(map[model.ProfileID]string, len(profiles))
	for _, p := range profiles {
		path := cfg.InputFile(p.ID)
		if path == "" {
			return nil, common.NewUserError(
				fmt.Sprintf("No input file for the %s profile; pass --%s-file or set import.%s_file", p.ID, p.ID, p.ID),
				fmt.Errorf("%w: import.%s_file", common.ErrMissingConfig, p.ID))
		}
		files[p.ID] = path
	}
	return files, nil
}

// openLogFile redirects slog to path for the lifetime of the TUI. An empty
// path discards log output.
func openLogFile(path string) (func(), error) {
	if path == "" {
		return func() {}, setupLogging(io.Discard)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // path comes from user config
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if err := setupLogging(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	return func() {
		_ = setupLogging(os.Stderr)
		_ = f.Close()
	}, nil
}
