// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/ankiflow/internal/model"
)

// CardStore is the remote flashcard store the importer reconciles against.
// Implementations must be safe for concurrent use: import runs and resolution
// actions call it from separate goroutines.
type CardStore interface {
	// Deck operations
	DeckExists(ctx context.Context, name string) (bool, error)
	CreateDeck(ctx context.Context, name string) error

	// Lookup
	FindNotesByFrontAnyOf(ctx context.Context, fronts []string) ([]model.NoteID, error)
	FetchNoteFields(ctx context.Context, noteIDs []model.NoteID) ([]NoteFields, error)
	FetchCardDecks(ctx context.Context, cardIDs []model.CardID) ([]CardDeck, error)

	// Writes
	BulkAddNotes(ctx context.Context, notes []NewNote) ([]*model.NoteID, error)
	UpdateNoteBack(ctx context.Context, noteID model.NoteID, back string) error

	// Scheduling
	FindCardsByNoteIDs(ctx context.Context, noteIDs []model.NoteID) ([]model.CardID, error)
	Unsuspend(ctx context.Context, cardIDs []model.CardID) error
	ResetToNew(ctx context.Context, cardIDs []model.CardID) error

	// OpenEditor asks the store's UI to open a note for manual editing.
	OpenEditor(ctx context.Context, noteID model.NoteID) error
}

// NoteFields is the field data of one stored note.
type NoteFields struct {
	Front   string
	Back    string
	CardIDs []model.CardID
	NoteID  model.NoteID
}

// CardDeck maps a card to the deck that holds it.
type CardDeck struct {
	DeckName string
	CardID   model.CardID
}

// NewNote is a note-creation record for a bulk add.
type NewNote struct {
	Deck           string
	Model          string
	Front          string
	Back           string
	Tags           []string
	AllowDuplicate bool
}

// RunJournal records the outcome of import runs and resolution actions.
type RunJournal interface {
	RecordRun(ctx context.Context, run RunRecord) error
	RecordAction(ctx context.Context, action ActionRecord) error
	RecentRuns(ctx context.Context, limit int) ([]RunRecord, error)
	RecentActions(ctx context.Context, limit int) ([]ActionRecord, error)
	Close() error
}

// RunRecord is a journal entry for one finished import run.
type RunRecord struct {
	FinishedAt time.Time
	Profile    model.ProfileID
	Deck       string
	Error      string
	Counts     model.Counts
	ID         int64
	Seq        int
}

// ActionRecord is a journal entry for one resolution action outcome.
type ActionRecord struct {
	At     time.Time
	ItemID model.ItemID
	Kind   model.ActionKind
	Error  string
	NoteID model.NoteID
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
