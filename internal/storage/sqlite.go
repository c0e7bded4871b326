// Package storage persists the local run journal in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/ankiflow/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// MemoryPath opens a private in-memory journal.
const MemoryPath = ":memory:"

// SQLiteJournal implements service.RunJournal on SQLite.
type SQLiteJournal struct {
	db     *sql.DB
	dbPath string
}

var _ service.RunJournal = (*SQLiteJournal)(nil)

// NewSQLiteJournal opens (creating if needed) the journal at dbPath.
// Call Migrate before use.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dsn := dbPath
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// One connection: SQLite serialises writers anyway and :memory: is per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	return &SQLiteJournal{db: db, dbPath: dbPath}, nil
}

// OpenJournal opens and migrates the journal in one step.
func OpenJournal(ctx context.Context, dbPath string) (*SQLiteJournal, error) {
	journal, err := NewSQLiteJournal(dbPath)
	if err != nil {
		return nil, err
	}
	if err := journal.Migrate(ctx); err != nil {
		_ = journal.Close()
		return nil, err
	}
	return journal, nil
}

// Path returns the database path the journal was opened with.
func (s *SQLiteJournal) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteJournal) Close() error {
	return s.db.Close()
}
