package model

import (
	"fmt"
	"strings"
)

// ProfileID identifies one of the two fixed deck profiles.
type ProfileID string

// Profile identifiers.
const (
	ProfilePassive ProfileID = "passive"
	ProfileActive  ProfileID = "active"
)

// ParseProfileID converts user input into a ProfileID.
func ParseProfileID(s string) (ProfileID, error) {
	switch ProfileID(strings.ToLower(strings.TrimSpace(s))) {
	case ProfilePassive:
		return ProfilePassive, nil
	case ProfileActive:
		return ProfileActive, nil
	default:
		return "", fmt.Errorf("unknown profile %q (expected passive or active)", s)
	}
}

// ClassifierID selects one of the statically known line classifiers.
type ClassifierID int

// Classifier identifiers.
const (
	ClassifierPassive ClassifierID = iota
	ClassifierActive
)

func (c ClassifierID) String() string {
	switch c {
	case ClassifierPassive:
		return "passive"
	case ClassifierActive:
		return "active"
	default:
		return fmt.Sprintf("classifier(%d)", int(c))
	}
}

// DeckProfile bundles a target deck, the classifier for its input and the rule
// that turns tag suffixes into store tags. Profiles are built once from
// configuration and never mutated.
type DeckProfile struct {
	ID         ProfileID
	DeckName   string
	ModelName  string
	Classifier ClassifierID
	KanjiTag   string
}

// Tags applies the profile's tag rule to a suffix.
// The result is ordered and never nil.
func (p DeckProfile) Tags(suffix TagSuffix) []string {
	if p.ID == ProfilePassive && suffix == TagSuffixKanji && p.KanjiTag != "" {
		return []string{p.KanjiTag}
	}
	return []string{}
}

// ItemID builds the identity of a result item produced from a source line.
func (p DeckProfile) ItemID(line int) ItemID {
	return ItemID(fmt.Sprintf("%s:%d", p.ID, line))
}
