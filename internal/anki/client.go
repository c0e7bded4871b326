package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/ankiflow/internal/common"
	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/service"
)

// Field names of the note model the importer writes to.
const (
	FieldFront = "Front"
	FieldBack  = "Back"
)

// Config holds AnkiConnect client configuration.
type Config struct {
	URL           string
	Version       int
	Timeout       time.Duration
	RetryAttempts int
}

// Client talks to AnkiConnect.
type Client struct {
	httpClient *http.Client
	url        string
	retry      service.RetryOptions
	version    int
}

// Ensure we implement the interface.
var _ service.CardStore = (*Client)(nil)

// NewClient creates a new AnkiConnect client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: anki url", common.ErrMissingConfig)
	}
	if !strings.HasPrefix(cfg.URL, "http://") && !strings.HasPrefix(cfg.URL, "https://") {
		return nil, fmt.Errorf("%w: anki url %q is not an http(s) URL", common.ErrInvalidConfig, cfg.URL)
	}
	if cfg.Version <= 0 {
		cfg.Version = 6
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		url:     cfg.URL,
		version: cfg.Version,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		retry: service.RetryOptions{
			MaxAttempts:  cfg.RetryAttempts,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
		},
	}, nil
}

// Version returns the AnkiConnect API version; it doubles as a connectivity check.
func (c *Client) Version(ctx context.Context) (int, error) {
	var v int
	if err := c.read(ctx, "version", nil, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// DeckExists implements service.CardStore.
func (c *Client) DeckExists(ctx context.Context, name string) (bool, error) {
	var decks []string
	if err := c.read(ctx, "deckNames", nil, &decks); err != nil {
		return false, err
	}
	return slices.Contains(decks, name), nil
}

// CreateDeck implements service.CardStore.
func (c *Client) CreateDeck(ctx context.Context, name string) error {
	var id int64
	return c.invoke(ctx, "createDeck", map[string]any{"deck": name}, &id)
}

// FindNotesByFrontAnyOf implements service.CardStore.
func (c *Client) FindNotesByFrontAnyOf(ctx context.Context, fronts []string) ([]model.NoteID, error) {
	if len(fronts) == 0 {
		return nil, nil
	}

	query := FrontQuery(fronts)
	slog.Debug("Searching notes by front", "fronts", len(fronts), "query_bytes", len(query))

	var ids []int64
	if err := c.read(ctx, "findNotes", map[string]any{"query": query}, &ids); err != nil {
		return nil, err
	}
	return toNoteIDs(ids), nil
}

// FetchNoteFields implements service.CardStore.
// Ids AnkiConnect no longer knows come back as empty objects and are skipped.
func (c *Client) FetchNoteFields(ctx context.Context, noteIDs []model.NoteID) ([]service.NoteFields, error) {
	if len(noteIDs) == 0 {
		return nil, nil
	}

	var infos []noteInfo
	if err := c.read(ctx, "notesInfo", map[string]any{"notes": noteIDs}, &infos); err != nil {
		return nil, err
	}

	notes := make([]service.NoteFields, 0, len(infos))
	for _, info := range infos {
		if info.NoteID == 0 {
			continue
		}
		cardIDs := make([]model.CardID, 0, len(info.Cards))
		for _, id := range info.Cards {
			cardIDs = append(cardIDs, model.CardID(id))
		}
		notes = append(notes, service.NoteFields{
			NoteID:  model.NoteID(info.NoteID),
			Front:   info.Fields[FieldFront].Value,
			Back:    info.Fields[FieldBack].Value,
			CardIDs: cardIDs,
		})
	}
	return notes, nil
}

// FetchCardDecks implements service.CardStore.
func (c *Client) FetchCardDecks(ctx context.Context, cardIDs []model.CardID) ([]service.CardDeck, error) {
	if len(cardIDs) == 0 {
		return nil, nil
	}

	var infos []cardInfo
	if err := c.read(ctx, "cardsInfo", map[string]any{"cards": cardIDs}, &infos); err != nil {
		return nil, err
	}

	decks := make([]service.CardDeck, 0, len(infos))
	for _, info := range infos {
		if info.CardID == 0 {
			continue
		}
		decks = append(decks, service.CardDeck{CardID: model.CardID(info.CardID), DeckName: info.DeckName})
	}
	return decks, nil
}

// BulkAddNotes implements service.CardStore. The result is positional: a nil
// entry means the note at that index was not added.
func (c *Client) BulkAddNotes(ctx context.Context, notes []service.NewNote) ([]*model.NoteID, error) {
	if len(notes) == 0 {
		return nil, nil
	}

	payload := make([]addNote, 0, len(notes))
	for _, n := range notes {
		tags := n.Tags
		if tags == nil {
			tags = []string{}
		}
		payload = append(payload, addNote{
			DeckName:  n.Deck,
			ModelName: n.Model,
			Fields:    map[string]string{FieldFront: n.Front, FieldBack: n.Back},
			Tags:      tags,
			Options:   addNoteOptions{AllowDuplicate: n.AllowDuplicate},
		})
	}

	var ids []*int64
	if err := c.invoke(ctx, "addNotes", map[string]any{"notes": payload}, &ids); err != nil {
		return nil, err
	}

	result := make([]*model.NoteID, len(ids))
	for i, id := range ids {
		if id == nil {
			continue
		}
		noteID := model.NoteID(*id)
		result[i] = &noteID
	}
	return result, nil
}

// UpdateNoteBack implements service.CardStore.
func (c *Client) UpdateNoteBack(ctx context.Context, noteID model.NoteID, back string) error {
	note := updateNote{ID: int64(noteID), Fields: map[string]string{FieldBack: back}}
	return c.invoke(ctx, "updateNoteFields", map[string]any{"note": note}, nil)
}

// FindCardsByNoteIDs implements service.CardStore.
func (c *Client) FindCardsByNoteIDs(ctx context.Context, noteIDs []model.NoteID) ([]model.CardID, error) {
	if len(noteIDs) == 0 {
		return nil, nil
	}

	var ids []int64
	if err := c.read(ctx, "findCards", map[string]any{"query": NoteIDQuery(noteIDs)}, &ids); err != nil {
		return nil, err
	}

	cardIDs := make([]model.CardID, 0, len(ids))
	for _, id := range ids {
		cardIDs = append(cardIDs, model.CardID(id))
	}
	return cardIDs, nil
}

// Unsuspend implements service.CardStore.
func (c *Client) Unsuspend(ctx context.Context, cardIDs []model.CardID) error {
	if len(cardIDs) == 0 {
		return nil
	}
	return c.invoke(ctx, "unsuspend", map[string]any{"cards": cardIDs}, nil)
}

// ResetToNew implements service.CardStore.
func (c *Client) ResetToNew(ctx context.Context, cardIDs []model.CardID) error {
	if len(cardIDs) == 0 {
		return nil
	}
	return c.invoke(ctx, "forgetCards", map[string]any{"cards": cardIDs}, nil)
}

// OpenEditor implements service.CardStore.
func (c *Client) OpenEditor(ctx context.Context, noteID model.NoteID) error {
	return c.invoke(ctx, "guiEditNote", map[string]any{"note": noteID}, nil)
}

// read performs an idempotent action with retries.
func (c *Client) read(ctx context.Context, action string, params, result any) error {
	return common.WithRetry(ctx, func() error {
		return c.invoke(ctx, action, params, result)
	}, c.retry)
}

// invoke performs one AnkiConnect call and decodes its result into result (if non-nil).
func (c *Client) invoke(ctx context.Context, action string, params, result any) error {
	body, err := json.Marshal(request{Action: action, Version: c.version, Params: params})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrStoreUnavailable, action, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: HTTP %d - %s", common.ErrStoreUnavailable, action, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var envelope response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: %s: malformed response: %v", common.ErrStoreUnavailable, action, err)
	}
	if envelope.Error != nil {
		return &APIError{Action: action, Message: *envelope.Error}
	}

	if result == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("%w: %s: malformed result: %v", common.ErrStoreUnavailable, action, err)
	}
	return nil
}

func toNoteIDs(ids []int64) []model.NoteID {
	noteIDs := make([]model.NoteID, 0, len(ids))
	for _, id := range ids {
		noteIDs = append(noteIDs, model.NoteID(id))
	}
	return noteIDs
}
