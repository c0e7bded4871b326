package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Veraticus/ankiflow/internal/common"
	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/service"
)

// Reconciler partitions a batch of classified cards against the card store and
// adds the ones that are new.
type Reconciler struct {
	store service.CardStore
}

// NewReconciler creates a reconciler backed by store.
func NewReconciler(store service.CardStore) *Reconciler {
	return &Reconciler{store: store}
}

// Reconcile looks up every distinct front in the whole store, buckets the cards
// in input order and adds the remaining ones to the profile's deck in one call.
//
// The returned result has no Unparsable entries; those come from classification.
// An error means nothing was written.
func (r *Reconciler) Reconcile(ctx context.Context, profile model.DeckProfile, cards []model.ClassifiedCard) (model.PartitionResult, error) {
	result := model.PartitionResult{Profile: profile.ID}

	exists, err := r.store.DeckExists(ctx, profile.DeckName)
	if err != nil {
		return result, fmt.Errorf("failed to check deck %q: %w", profile.DeckName, err)
	}
	if !exists {
		return result, fmt.Errorf("%w: %s", common.ErrDeckUnresolvable, profile.DeckName)
	}

	if len(cards) == 0 {
		return result, nil
	}

	existing, err := r.existingNotes(ctx, distinctFronts(cards))
	if err != nil {
		return result, err
	}

	type staged struct {
		id   model.ItemID
		card model.ClassifiedCard
	}
	var (
		pending []staged
		notes   []service.NewNote
		claimed = make(map[string]struct{}, len(cards))
	)

	for i, card := range cards {
		id := itemID(profile, card, i)
		front := strings.TrimSpace(card.Front)

		if ref, ok := existing[front]; ok {
			result.DuplicateInStore = append(result.DuplicateInStore, model.DuplicateInStore{
				ID:       id,
				Card:     card,
				Existing: ref,
			})
			continue
		}
		if _, ok := claimed[front]; ok {
			result.DuplicateInBatch = append(result.DuplicateInBatch, model.DuplicateInBatch{ID: id, Card: card})
			continue
		}

		claimed[front] = struct{}{}
		pending = append(pending, staged{id: id, card: card})
		notes = append(notes, service.NewNote{
			Deck:           profile.DeckName,
			Model:          profile.ModelName,
			Front:          front,
			Back:           strings.TrimSpace(card.Back),
			Tags:           profile.Tags(card.TagSuffix),
			AllowDuplicate: false,
		})
	}

	if len(notes) == 0 {
		return result, nil
	}

	slog.Info("Adding notes",
		"profile", profile.ID,
		"deck", profile.DeckName,
		"staged", len(notes))

	added, err := r.store.BulkAddNotes(ctx, notes)
	if err != nil {
		slog.Error("Bulk add failed, marking every staged note as failed",
			"profile", profile.ID,
			"staged", len(notes),
			"error", err)
		for _, p := range pending {
			result.FailedWrite = append(result.FailedWrite, model.FailedWrite{
				ID:     p.id,
				Card:   p.card,
				Reason: err.Error(),
			})
		}
		return result, nil
	}

	for i, p := range pending {
		if i < len(added) && added[i] != nil {
			result.Added++
			continue
		}
		slog.Warn("Store rejected note", "item", p.id, "front", p.card.Front)
		result.FailedWrite = append(result.FailedWrite, model.FailedWrite{
			ID:     p.id,
			Card:   p.card,
			Reason: common.ErrWriteRejected.Error(),
		})
	}

	return result, nil
}

// existingNotes maps trimmed fronts to the notes that already carry them.
func (r *Reconciler) existingNotes(ctx context.Context, fronts []string) (map[string]model.ExistingNoteRef, error) {
	noteIDs, err := r.store.FindNotesByFrontAnyOf(ctx, fronts)
	if err != nil {
		return nil, fmt.Errorf("failed to search existing notes: %w", err)
	}
	if len(noteIDs) == 0 {
		return map[string]model.ExistingNoteRef{}, nil
	}

	notes, err := r.store.FetchNoteFields(ctx, noteIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing notes: %w", err)
	}

	decks := r.owningDecks(ctx, notes)

	existing := make(map[string]model.ExistingNoteRef, len(notes))
	for _, note := range notes {
		front := strings.TrimSpace(note.Front)
		if _, ok := existing[front]; ok {
			continue
		}
		ref := model.ExistingNoteRef{NoteID: note.NoteID, CurrentBack: note.Back}
		if len(note.CardIDs) > 0 {
			ref.DeckName = decks[note.CardIDs[0]]
		}
		existing[front] = ref
	}

	slog.Debug("Found existing notes", "queried_fronts", len(fronts), "matched", len(existing))
	return existing, nil
}

// owningDecks resolves the deck of each note's first card. Failures only cost
// the deck name, so they are logged rather than returned.
func (r *Reconciler) owningDecks(ctx context.Context, notes []service.NoteFields) map[model.CardID]string {
	firstCards := make([]model.CardID, 0, len(notes))
	for _, note := range notes {
		if len(note.CardIDs) > 0 {
			firstCards = append(firstCards, note.CardIDs[0])
		}
	}

	decks := make(map[model.CardID]string, len(firstCards))
	if len(firstCards) == 0 {
		return decks
	}

	cardDecks, err := r.store.FetchCardDecks(ctx, firstCards)
	if err != nil {
		slog.Warn("Failed to resolve owning decks", "cards", len(firstCards), "error", err)
		return decks
	}
	for _, cd := range cardDecks {
		decks[cd.CardID] = cd.DeckName
	}
	return decks
}

func distinctFronts(cards []model.ClassifiedCard) []string {
	seen := make(map[string]struct{}, len(cards))
	fronts := make([]string, 0, len(cards))
	for _, card := range cards {
		front := strings.TrimSpace(card.Front)
		if _, ok := seen[front]; ok {
			continue
		}
		seen[front] = struct{}{}
		fronts = append(fronts, front)
	}
	return fronts
}

// itemID falls back to the card's position when it carries no source line.
func itemID(profile model.DeckProfile, card model.ClassifiedCard, index int) model.ItemID {
	if card.Line > 0 {
		return profile.ItemID(card.Line)
	}
	return model.ItemID(string(profile.ID) + ":#" + strconv.Itoa(index+1))
}
