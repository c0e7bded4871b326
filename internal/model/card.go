// Package model defines the core domain models used throughout the application.
package model

import "strings"

// TagSuffix is a classification marker a classifier may attach to a card.
// The owning DeckProfile turns it into store-level tags.
type TagSuffix string

// Tag suffix constants. TagSuffixNone means the classifier attached nothing.
const (
	TagSuffixNone  TagSuffix = ""
	TagSuffixKanji TagSuffix = "Kanji"
)

// ClassifiedCard is a successfully classified input line.
// Front and Back are never blank; a line that cannot be classified produces no card.
type ClassifiedCard struct {
	Front     string
	Back      string
	TagSuffix TagSuffix
	Line      int // 1-based source line, 0 when classified outside a file
}

// Valid reports whether both sides of the card carry text.
func (c ClassifiedCard) Valid() bool {
	return strings.TrimSpace(c.Front) != "" && strings.TrimSpace(c.Back) != ""
}

// RawLine is an input line that never became a ClassifiedCard.
type RawLine struct {
	Text string
	Line int
}
