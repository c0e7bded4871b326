package anki

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/ankiflow/internal/common"
	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Params  map[string]json.RawMessage
	Action  string
	Version int
}

// fakeAnki is a minimal AnkiConnect stand-in. Handlers return (result, errorMessage).
type fakeAnki struct {
	handlers map[string]func(params map[string]json.RawMessage) (any, string)
	calls    []recordedCall
	mu       sync.Mutex
}

func newFakeAnki(t *testing.T) (*fakeAnki, *Client) {
	t.Helper()

	fake := &fakeAnki{handlers: make(map[string]func(map[string]json.RawMessage) (any, string))}
	server := httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL, Timeout: 5 * time.Second, RetryAttempts: 1})
	require.NoError(t, err)
	return fake, client
}

func (f *fakeAnki) handle(action string, h func(params map[string]json.RawMessage) (any, string)) {
	f.handlers[action] = h
}

func (f *fakeAnki) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Params  map[string]json.RawMessage `json:"params"`
		Action  string                     `json:"action"`
		Version int                        `json:"version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Action: req.Action, Version: req.Version, Params: req.Params})
	h, ok := f.handlers[req.Action]
	f.mu.Unlock()

	resp := map[string]any{"result": nil, "error": nil}
	if !ok {
		resp["error"] = "unsupported action"
	} else {
		result, errMsg := h(req.Params)
		resp["result"] = result
		if errMsg != "" {
			resp["error"] = errMsg
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeAnki) lastCall() recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func TestFrontQuery(t *testing.T) {
	query := FrontQuery([]string{"front1", `front2 with "quotes"`})
	assert.Equal(t, `("Front:front1" or "Front:front2 with \"quotes\"")`, query)
}

func TestNoteIDQuery(t *testing.T) {
	assert.Equal(t, "nid:1,22,333", NoteIDQuery([]model.NoteID{1, 22, 333}))
}

func TestNewClient_ValidatesURL(t *testing.T) {
	_, err := NewClient(Config{})
	require.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = NewClient(Config{URL: "localhost:8765"})
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestClient_DeckExists(t *testing.T) {
	fake, client := newFakeAnki(t)
	fake.handle("deckNames", func(map[string]json.RawMessage) (any, string) {
		return []string{"Default", "Japanese::Passive"}, ""
	})

	ok, err := client.DeckExists(context.Background(), "Japanese::Passive")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.DeckExists(context.Background(), "Japanese::Active")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 6, fake.lastCall().Version)
}

func TestClient_FindNotesByFrontAnyOf_SendsGlobalQuery(t *testing.T) {
	fake, client := newFakeAnki(t)
	fake.handle("findNotes", func(map[string]json.RawMessage) (any, string) {
		return []int64{101, 102}, ""
	})

	ids, err := client.FindNotesByFrontAnyOf(context.Background(), []string{"front1", `say "hi"`})
	require.NoError(t, err)
	assert.Equal(t, []model.NoteID{101, 102}, ids)

	var query string
	require.NoError(t, json.Unmarshal(fake.lastCall().Params["query"], &query))
	assert.Equal(t, `("Front:front1" or "Front:say \"hi\"")`, query)
	assert.NotContains(t, query, "deck:")
}

func TestClient_FindNotesByFrontAnyOf_EmptyInputSkipsCall(t *testing.T) {
	fake, client := newFakeAnki(t)

	ids, err := client.FindNotesByFrontAnyOf(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, fake.calls)
}

func TestClient_FetchNoteFields(t *testing.T) {
	fake, client := newFakeAnki(t)
	fake.handle("notesInfo", func(map[string]json.RawMessage) (any, string) {
		return []any{
			map[string]any{
				"noteId": 101,
				"cards":  []int64{9001, 9002},
				"fields": map[string]any{
					"Front": map[string]any{"value": "front1", "order": 0},
					"Back":  map[string]any{"value": "old", "order": 1},
				},
			},
			map[string]any{},
		}, ""
	})

	notes, err := client.FetchNoteFields(context.Background(), []model.NoteID{101, 999})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, service.NoteFields{
		NoteID:  101,
		Front:   "front1",
		Back:    "old",
		CardIDs: []model.CardID{9001, 9002},
	}, notes[0])
}

func TestClient_FetchCardDecks(t *testing.T) {
	fake, client := newFakeAnki(t)
	fake.handle("cardsInfo", func(map[string]json.RawMessage) (any, string) {
		return []any{map[string]any{"cardId": 9001, "deckName": "Japanese::Passive"}}, ""
	})

	decks, err := client.FetchCardDecks(context.Background(), []model.CardID{9001})
	require.NoError(t, err)
	assert.Equal(t, []service.CardDeck{{CardID: 9001, DeckName: "Japanese::Passive"}}, decks)
}

func TestClient_BulkAddNotes_PositionalResult(t *testing.T) {
	fake, client := newFakeAnki(t)
	fake.handle("addNotes", func(map[string]json.RawMessage) (any, string) {
		return []any{555, nil}, ""
	})

	ids, err := client.BulkAddNotes(context.Background(), []service.NewNote{
		{Deck: "D", Model: "Basic", Front: "a", Back: "b", Tags: []string{"Kanji"}},
		{Deck: "D", Model: "Basic", Front: "c", Back: "d"},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	require.NotNil(t, ids[0])
	assert.Equal(t, model.NoteID(555), *ids[0])
	assert.Nil(t, ids[1])

	var sent []map[string]any
	require.NoError(t, json.Unmarshal(fake.lastCall().Params["notes"], &sent))
	require.Len(t, sent, 2)
	assert.Equal(t, "D", sent[0]["deckName"])
	assert.Equal(t, "Basic", sent[0]["modelName"])
	assert.Equal(t, map[string]any{"Front": "a", "Back": "b"}, sent[0]["fields"])
	assert.Equal(t, []any{"Kanji"}, sent[0]["tags"])
	assert.Equal(t, map[string]any{"allowDuplicate": false}, sent[0]["options"])
	assert.Equal(t, []any{}, sent[1]["tags"])
}

func TestClient_APIError(t *testing.T) {
	fake, client := newFakeAnki(t)
	fake.handle("createDeck", func(map[string]json.RawMessage) (any, string) {
		return nil, "collection is not available"
	})

	err := client.CreateDeck(context.Background(), "Japanese::Active")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "createDeck", apiErr.Action)
	assert.Equal(t, "collection is not available", apiErr.Message)
	assert.NotErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestClient_TransportFailure(t *testing.T) {
	client, err := NewClient(Config{URL: "http://127.0.0.1:1", Timeout: time.Second, RetryAttempts: 1})
	require.NoError(t, err)

	_, err = client.DeckExists(context.Background(), "x")
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestClient_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL, RetryAttempts: 1})
	require.NoError(t, err)

	_, err = client.BulkAddNotes(context.Background(), []service.NewNote{{Front: "a", Back: "b"}})
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestClient_RescheduleActions(t *testing.T) {
	fake, client := newFakeAnki(t)
	fake.handle("findCards", func(map[string]json.RawMessage) (any, string) {
		return []int64{9001, 9002}, ""
	})
	fake.handle("unsuspend", func(map[string]json.RawMessage) (any, string) { return true, "" })
	fake.handle("forgetCards", func(map[string]json.RawMessage) (any, string) { return nil, "" })
	fake.handle("updateNoteFields", func(map[string]json.RawMessage) (any, string) { return nil, "" })
	fake.handle("guiEditNote", func(map[string]json.RawMessage) (any, string) { return nil, "" })

	ctx := context.Background()
	cards, err := client.FindCardsByNoteIDs(ctx, []model.NoteID{101})
	require.NoError(t, err)
	assert.Equal(t, []model.CardID{9001, 9002}, cards)

	var query string
	require.NoError(t, json.Unmarshal(fake.lastCall().Params["query"], &query))
	assert.Equal(t, "nid:101", query)

	require.NoError(t, client.Unsuspend(ctx, cards))
	require.NoError(t, client.ResetToNew(ctx, cards))
	assert.Equal(t, "forgetCards", fake.lastCall().Action)

	require.NoError(t, client.UpdateNoteBack(ctx, 101, "old<hr>new"))
	var note struct {
		Fields map[string]string `json:"fields"`
		ID     int64             `json:"id"`
	}
	require.NoError(t, json.Unmarshal(fake.lastCall().Params["note"], &note))
	assert.Equal(t, int64(101), note.ID)
	assert.Equal(t, map[string]string{"Back": "old<hr>new"}, note.Fields)

	require.NoError(t, client.OpenEditor(ctx, 101))
	assert.Equal(t, "guiEditNote", fake.lastCall().Action)
}
