package testutil

import "github.com/Veraticus/ankiflow/internal/model"

// Deck names used across tests.
const (
	PassiveDeck = "Japanese::Passive"
	ActiveDeck  = "Japanese::Active"
	KanjiTag    = "Kanji"
)

// PassiveProfile is the passive profile with the test deck names.
func PassiveProfile() model.DeckProfile {
	return model.DeckProfile{
		ID:         model.ProfilePassive,
		DeckName:   PassiveDeck,
		ModelName:  "Basic",
		Classifier: model.ClassifierPassive,
		KanjiTag:   KanjiTag,
	}
}

// ActiveProfile is the active profile with the test deck names.
func ActiveProfile() model.DeckProfile {
	return model.DeckProfile{
		ID:         model.ProfileActive,
		DeckName:   ActiveDeck,
		ModelName:  "Basic",
		Classifier: model.ClassifierActive,
		KanjiTag:   KanjiTag,
	}
}

// PassiveLines is passive input covering every outcome when the store already
// holds ばらまき: line 1 is a store duplicate, line 2 is added with the kanji
// tag, line 3 is unparsable and line 4 repeats line 2.
func PassiveLines() []string {
	return []string{
		"ばらまきspending (money) recklessly",
		"(摯) し sincerity, admonish",
		"hello world",
		"(摯) another reading",
	}
}

// ActiveLines is active input with one card per line.
func ActiveLines() []string {
	return []string{
		"(to scatter) ばらまく",
	}
}
