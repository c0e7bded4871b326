package anki

import (
	"encoding/json"
	"fmt"
)

type request struct {
	Params  any    `json:"params,omitempty"`
	Action  string `json:"action"`
	Version int    `json:"version"`
}

type response struct {
	Error  *string         `json:"error"`
	Result json.RawMessage `json:"result"`
}

// APIError is an error reported by AnkiConnect itself (the request arrived).
type APIError struct {
	Action  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anki %s: %s", e.Action, e.Message)
}

type noteInfo struct {
	Fields map[string]fieldValue `json:"fields"`
	Cards  []int64               `json:"cards"`
	NoteID int64                 `json:"noteId"`
}

type fieldValue struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

type cardInfo struct {
	DeckName string `json:"deckName"`
	CardID   int64  `json:"cardId"`
}

type addNote struct {
	Fields    map[string]string `json:"fields"`
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Tags      []string          `json:"tags"`
	Options   addNoteOptions    `json:"options"`
}

type addNoteOptions struct {
	AllowDuplicate bool `json:"allowDuplicate"`
}

type updateNote struct {
	Fields map[string]string `json:"fields"`
	ID     int64             `json:"id"`
}
