package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the schema version this build writes.
const ExpectedSchemaVersion = 2

// Migration is one schema step.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Run and action journal",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS runs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					profile TEXT NOT NULL,
					seq INTEGER NOT NULL,
					deck TEXT NOT NULL,
					added INTEGER NOT NULL DEFAULT 0,
					duplicate_in_store INTEGER NOT NULL DEFAULT 0,
					duplicate_in_batch INTEGER NOT NULL DEFAULT 0,
					failed_write INTEGER NOT NULL DEFAULT 0,
					unparsable INTEGER NOT NULL DEFAULT 0,
					error TEXT NOT NULL DEFAULT '',
					finished_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_runs_finished_at ON runs(finished_at)`,

				`CREATE TABLE IF NOT EXISTS actions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					item_id TEXT NOT NULL,
					kind TEXT NOT NULL,
					note_id INTEGER NOT NULL DEFAULT 0,
					error TEXT NOT NULL DEFAULT '',
					at DATETIME NOT NULL
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Index actions by note",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX idx_actions_note ON actions(note_id)`,
				`CREATE INDEX idx_actions_at ON actions(at)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate applies all pending migrations, tracking progress in PRAGMA user_version.
func (s *SQLiteJournal) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if currentVersion > ExpectedSchemaVersion {
		return fmt.Errorf("journal schema version %d is newer than supported %d", currentVersion, ExpectedSchemaVersion)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		slog.Debug("Applied journal migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	return nil
}

// SchemaVersion reports the current schema version.
func (s *SQLiteJournal) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
