package engine

import (
	"context"

	"github.com/Veraticus/ankiflow/internal/model"
)

const (
	passiveDeck = "Japanese::Passive"
	activeDeck  = "Japanese::Active"
)

func passiveProfile() model.DeckProfile {
	return model.DeckProfile{
		ID:         model.ProfilePassive,
		DeckName:   passiveDeck,
		ModelName:  "Basic",
		Classifier: model.ClassifierPassive,
		KanjiTag:   "Kanji",
	}
}

func activeProfile() model.DeckProfile {
	return model.DeckProfile{
		ID:         model.ProfileActive,
		DeckName:   activeDeck,
		ModelName:  "Basic",
		Classifier: model.ClassifierActive,
		KanjiTag:   "Kanji",
	}
}

// gatedStore holds selected calls until the gate is closed.
type gatedStore struct {
	*MockStore
	gate chan struct{}
}

func newGatedStore(decks ...string) *gatedStore {
	return &gatedStore{MockStore: NewMockStore(decks...), gate: make(chan struct{})}
}

func (g *gatedStore) DeckExists(ctx context.Context, name string) (bool, error) {
	<-g.gate
	return g.MockStore.DeckExists(ctx, name)
}

func (g *gatedStore) FindCardsByNoteIDs(ctx context.Context, noteIDs []model.NoteID) ([]model.CardID, error) {
	<-g.gate
	return g.MockStore.FindCardsByNoteIDs(ctx, noteIDs)
}

func eventsFor(events []model.ImportEvent, ref model.RunRef) []model.ImportEvent {
	var out []model.ImportEvent
	for _, ev := range events {
		switch e := ev.(type) {
		case model.Progress:
			if e.Run == ref {
				out = append(out, e)
			}
		case model.Complete:
			if e.Run == ref {
				out = append(out, e)
			}
		case model.Error:
			if e.Run == ref {
				out = append(out, e)
			}
		}
	}
	return out
}
