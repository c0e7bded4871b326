package testutil

import (
	"testing"

	"github.com/Veraticus/ankiflow/internal/engine"
	"github.com/Veraticus/ankiflow/internal/model"
)

// StoreBuilder seeds an engine.MockStore.
//
// Example:
//
//	store, notes := testutil.NewStoreBuilder(t).
//		WithDecks(testutil.PassiveDeck).
//		WithNote("Elsewhere", "ばらまき", "old meaning").
//		Build()
type StoreBuilder struct {
	t         *testing.T
	failures  map[string]error
	decks     []string
	notes     []seedNote
	suspended bool
}

type seedNote struct {
	deck  string
	front string
	back  string
}

// SeededNote identifies a note the builder created.
type SeededNote struct {
	Front  string
	NoteID model.NoteID
	CardID model.CardID
}

// NewStoreBuilder starts an empty store.
func NewStoreBuilder(t *testing.T) *StoreBuilder {
	t.Helper()
	return &StoreBuilder{t: t, failures: make(map[string]error)}
}

// WithDecks adds existing decks.
func (b *StoreBuilder) WithDecks(names ...string) *StoreBuilder {
	b.decks = append(b.decks, names...)
	return b
}

// WithNote adds a note with one card.
func (b *StoreBuilder) WithNote(deck, front, back string) *StoreBuilder {
	b.notes = append(b.notes, seedNote{deck: deck, front: front, back: back})
	return b
}

// WithSuspendedCards suspends the card of every seeded note.
func (b *StoreBuilder) WithSuspendedCards() *StoreBuilder {
	b.suspended = true
	return b
}

// FailingOn makes method return err.
func (b *StoreBuilder) FailingOn(method string, err error) *StoreBuilder {
	b.failures[method] = err
	return b
}

// Build creates the store and returns the seeded notes in insertion order.
func (b *StoreBuilder) Build() (*engine.MockStore, []SeededNote) {
	b.t.Helper()

	store := engine.NewMockStore(b.decks...)
	seeded := make([]SeededNote, 0, len(b.notes))
	for _, n := range b.notes {
		noteID, cardID := store.AddNote(n.deck, n.front, n.back)
		if b.suspended {
			store.Suspend(cardID)
		}
		seeded = append(seeded, SeededNote{Front: n.front, NoteID: noteID, CardID: cardID})
	}
	for method, err := range b.failures {
		store.FailOn(method, err)
	}
	return store, seeded
}
