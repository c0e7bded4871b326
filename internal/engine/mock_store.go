package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Veraticus/ankiflow/internal/common"
	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/service"
)

// MockStore is an in-memory service.CardStore for tests. It keeps notes with
// one card each, records every call and can be told to fail per method.
type MockStore struct {
	decks     map[string]bool
	notes     map[model.NoteID]*mockNote
	suspended map[model.CardID]bool
	reset     map[model.CardID]bool
	errs      map[string]error
	reject    map[string]bool
	calls     []MockStoreCall
	nextID    int64
	mu        sync.Mutex
	// BulkResult, when set, replaces the computed addNotes result.
	BulkResult []*model.NoteID
}

// MockStoreCall records one call made to the mock.
type MockStoreCall struct {
	Args   any
	Method string
}

type mockNote struct {
	deck  string
	front string
	back  string
	tags  []string
	cards []model.CardID
}

// NewMockStore creates an empty mock store with the given decks.
func NewMockStore(decks ...string) *MockStore {
	m := &MockStore{
		decks:     make(map[string]bool),
		notes:     make(map[model.NoteID]*mockNote),
		suspended: make(map[model.CardID]bool),
		reset:     make(map[model.CardID]bool),
		errs:      make(map[string]error),
		reject:    make(map[string]bool),
		nextID:    1000,
	}
	for _, d := range decks {
		m.decks[d] = true
	}
	return m
}

// AddNote seeds a note and returns its id and the id of its card.
func (m *MockStore) AddNote(deck, front, back string) (model.NoteID, model.CardID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addNoteLocked(deck, front, back, nil)
}

// Suspend marks a card as suspended.
func (m *MockStore) Suspend(cardID model.CardID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suspended[cardID] = true
}

// FailOn makes the named method return err until cleared with a nil err.
func (m *MockStore) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, method)
		return
	}
	m.errs[method] = err
}

// RejectFront makes BulkAddNotes return a null entry for notes with this front.
func (m *MockStore) RejectFront(front string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reject[front] = true
}

// Calls returns the recorded calls.
func (m *MockStore) Calls() []MockStoreCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]MockStoreCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallsTo returns the arguments of every call to method.
func (m *MockStore) CallsTo(method string) []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	var args []any
	for _, c := range m.calls {
		if c.Method == method {
			args = append(args, c.Args)
		}
	}
	return args
}

// Note returns the stored back and tags of a note.
func (m *MockStore) Note(id model.NoteID) (back string, tags []string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return "", nil, false
	}
	return n.back, n.tags, true
}

// NoteCount is the number of notes in the store.
func (m *MockStore) NoteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notes)
}

// IsSuspended reports whether a card is suspended.
func (m *MockStore) IsSuspended(cardID model.CardID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.suspended[cardID]
}

// WasReset reports whether a card was reset to new.
func (m *MockStore) WasReset(cardID model.CardID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset[cardID]
}

// DeckExists implements service.CardStore.
func (m *MockStore) DeckExists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeckExists", name); err != nil {
		return false, err
	}
	return m.decks[name], nil
}

// CreateDeck implements service.CardStore.
func (m *MockStore) CreateDeck(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateDeck", name); err != nil {
		return err
	}
	m.decks[name] = true
	return nil
}

// FindNotesByFrontAnyOf implements service.CardStore. Like the real store it
// searches every deck.
func (m *MockStore) FindNotesByFrontAnyOf(_ context.Context, fronts []string) ([]model.NoteID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FindNotesByFrontAnyOf", slices.Clone(fronts)); err != nil {
		return nil, err
	}

	var ids []model.NoteID
	for id, n := range m.notes {
		if slices.Contains(fronts, n.front) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// FetchNoteFields implements service.CardStore.
func (m *MockStore) FetchNoteFields(_ context.Context, noteIDs []model.NoteID) ([]service.NoteFields, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FetchNoteFields", slices.Clone(noteIDs)); err != nil {
		return nil, err
	}

	var fields []service.NoteFields
	for _, id := range noteIDs {
		n, ok := m.notes[id]
		if !ok {
			continue
		}
		fields = append(fields, service.NoteFields{
			NoteID:  id,
			Front:   n.front,
			Back:    n.back,
			CardIDs: slices.Clone(n.cards),
		})
	}
	return fields, nil
}

// FetchCardDecks implements service.CardStore.
func (m *MockStore) FetchCardDecks(_ context.Context, cardIDs []model.CardID) ([]service.CardDeck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FetchCardDecks", slices.Clone(cardIDs)); err != nil {
		return nil, err
	}

	var decks []service.CardDeck
	for _, cardID := range cardIDs {
		for _, n := range m.notes {
			if slices.Contains(n.cards, cardID) {
				decks = append(decks, service.CardDeck{CardID: cardID, DeckName: n.deck})
				break
			}
		}
	}
	return decks, nil
}

// BulkAddNotes implements service.CardStore. A note is rejected when its front
// was marked with RejectFront, or when duplicates are disallowed and the deck
// already holds the front.
func (m *MockStore) BulkAddNotes(_ context.Context, notes []service.NewNote) ([]*model.NoteID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("BulkAddNotes", slices.Clone(notes)); err != nil {
		return nil, err
	}
	if m.BulkResult != nil {
		return m.BulkResult, nil
	}

	result := make([]*model.NoteID, len(notes))
	for i, n := range notes {
		if m.reject[n.Front] || !m.decks[n.Deck] {
			continue
		}
		if !n.AllowDuplicate && m.hasFrontLocked(n.Deck, n.Front) {
			continue
		}
		id, _ := m.addNoteLocked(n.Deck, n.Front, n.Back, n.Tags)
		result[i] = &id
	}
	return result, nil
}

// UpdateNoteBack implements service.CardStore.
func (m *MockStore) UpdateNoteBack(_ context.Context, noteID model.NoteID, back string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateNoteBack", back); err != nil {
		return err
	}
	n, ok := m.notes[noteID]
	if !ok {
		return fmt.Errorf("%w: %d", common.ErrNoteNotFound, noteID)
	}
	n.back = back
	return nil
}

// FindCardsByNoteIDs implements service.CardStore.
func (m *MockStore) FindCardsByNoteIDs(_ context.Context, noteIDs []model.NoteID) ([]model.CardID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FindCardsByNoteIDs", slices.Clone(noteIDs)); err != nil {
		return nil, err
	}

	var cards []model.CardID
	for _, id := range noteIDs {
		if n, ok := m.notes[id]; ok {
			cards = append(cards, n.cards...)
		}
	}
	return cards, nil
}

// Unsuspend implements service.CardStore.
func (m *MockStore) Unsuspend(_ context.Context, cardIDs []model.CardID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Unsuspend", slices.Clone(cardIDs)); err != nil {
		return err
	}
	for _, id := range cardIDs {
		delete(m.suspended, id)
	}
	return nil
}

// ResetToNew implements service.CardStore.
func (m *MockStore) ResetToNew(_ context.Context, cardIDs []model.CardID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ResetToNew", slices.Clone(cardIDs)); err != nil {
		return err
	}
	for _, id := range cardIDs {
		m.reset[id] = true
	}
	return nil
}

// OpenEditor implements service.CardStore.
func (m *MockStore) OpenEditor(_ context.Context, noteID model.NoteID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record("OpenEditor", noteID)
}

func (m *MockStore) record(method string, args any) error {
	m.calls = append(m.calls, MockStoreCall{Method: method, Args: args})
	return m.errs[method]
}

func (m *MockStore) addNoteLocked(deck, front, back string, tags []string) (model.NoteID, model.CardID) {
	m.nextID++
	noteID := model.NoteID(m.nextID)
	m.nextID++
	cardID := model.CardID(m.nextID)
	m.notes[noteID] = &mockNote{
		deck:  deck,
		front: front,
		back:  back,
		tags:  slices.Clone(tags),
		cards: []model.CardID{cardID},
	}
	return noteID, cardID
}

func (m *MockStore) hasFrontLocked(deck, front string) bool {
	for _, n := range m.notes {
		if n.deck == deck && strings.TrimSpace(n.front) == strings.TrimSpace(front) {
			return true
		}
	}
	return false
}

var _ service.CardStore = (*MockStore)(nil)
