package anki

import (
	"strconv"
	"strings"

	"github.com/Veraticus/ankiflow/internal/model"
)

// FrontQuery builds one search matching any of the fronts, in any deck:
//
//	("Front:a" or "Front:b \"quoted\"")
func FrontQuery(fronts []string) string {
	terms := make([]string, 0, len(fronts))
	for _, front := range fronts {
		terms = append(terms, `"Front:`+escapeQuotes(front)+`"`)
	}
	return "(" + strings.Join(terms, " or ") + ")"
}

// NoteIDQuery builds a search for all cards of the given notes.
func NoteIDQuery(noteIDs []model.NoteID) string {
	ids := make([]string, 0, len(noteIDs))
	for _, id := range noteIDs {
		ids = append(ids, strconv.FormatInt(int64(id), 10))
	}
	return "nid:" + strings.Join(ids, ",")
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
