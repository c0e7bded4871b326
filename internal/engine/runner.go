package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/ankiflow/internal/common"
	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/parser"
	"github.com/Veraticus/ankiflow/internal/service"
)

const runStages = 3

// Runner executes import runs in the background, at most one per profile.
// Every run publishes zero or more Progress events followed by exactly one
// Complete or Error.
type Runner struct {
	store      service.CardStore
	bus        *Bus
	reconciler *Reconciler
	inFlight   map[model.ProfileID]bool
	seq        map[model.ProfileID]int
	wg         sync.WaitGroup
	mu         sync.Mutex
}

// NewRunner creates a runner that reports to bus.
func NewRunner(store service.CardStore, bus *Bus) *Runner {
	return &Runner{
		store:      store,
		bus:        bus,
		reconciler: NewReconciler(store),
		inFlight:   make(map[model.ProfileID]bool),
		seq:        make(map[model.ProfileID]int),
	}
}

// Start launches an import of lines into the profile's deck and returns the
// reference its events will carry. It returns ErrRunInFlight if the profile
// already has a run whose terminal event has not been published.
//
// A started run is not cancelled with ctx; it finishes on its own.
func (r *Runner) Start(ctx context.Context, profile model.DeckProfile, lines []string) (model.RunRef, error) {
	r.mu.Lock()
	if r.inFlight[profile.ID] {
		r.mu.Unlock()
		return model.RunRef{}, fmt.Errorf("%w: %s", common.ErrRunInFlight, profile.ID)
	}
	r.inFlight[profile.ID] = true
	r.seq[profile.ID]++
	ref := model.RunRef{Profile: profile.ID, Seq: r.seq[profile.ID]}
	r.mu.Unlock()

	input := make([]string, len(lines))
	copy(input, lines)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(context.WithoutCancel(ctx), ref, profile, input)
	}()

	return ref, nil
}

// Running reports whether the profile has a run in flight.
func (r *Runner) Running(id model.ProfileID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFlight[id]
}

// Wait blocks until every started run has published its terminal event.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, ref model.RunRef, profile model.DeckProfile, lines []string) {
	logger := slog.With("run", ref.String(), "deck", profile.DeckName)
	logger.Info("Starting import", "lines", len(lines))

	r.progress(ref, 1, fmt.Sprintf("Checking deck %s", profile.DeckName))
	if err := r.ensureDeck(ctx, profile.DeckName); err != nil {
		logger.Error("Import failed", "stage", "deck", "error", err)
		r.fail(ref, err)
		return
	}

	r.progress(ref, 2, fmt.Sprintf("Classifying %d lines", len(lines)))
	cards, unparsable := parser.ClassifyLines(profile.Classifier, lines)
	for _, raw := range unparsable {
		logger.Warn("Could not parse line", "line", raw.Line, "text", raw.Text)
	}

	r.progress(ref, 3, fmt.Sprintf("Reconciling %d cards", len(cards)))
	result, err := r.reconciler.Reconcile(ctx, profile, cards)
	if err != nil {
		logger.Error("Import failed", "stage", "reconcile", "error", err)
		r.fail(ref, err)
		return
	}

	for _, raw := range unparsable {
		result.Unparsable = append(result.Unparsable, model.Unparsable{ID: profile.ItemID(raw.Line), Line: raw})
	}

	counts := result.Counts()
	logger.Info("Import complete",
		"added", counts.Added,
		"duplicate_in_store", counts.DuplicateInStore,
		"duplicate_in_batch", counts.DuplicateInBatch,
		"failed", counts.FailedWrite,
		"unparsable", counts.Unparsable)

	r.finish(ref, model.Complete{Run: ref, Partition: result, Summary: counts.String()})
}

// ensureDeck creates the deck when the store does not have it.
func (r *Runner) ensureDeck(ctx context.Context, deck string) error {
	exists, err := r.store.DeckExists(ctx, deck)
	if err != nil {
		return fmt.Errorf("failed to check deck %q: %w", deck, err)
	}
	if exists {
		return nil
	}

	slog.Info("Creating deck", "deck", deck)
	if err := r.store.CreateDeck(ctx, deck); err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrDeckUnresolvable, deck, err)
	}
	return nil
}

func (r *Runner) progress(ref model.RunRef, stage int, text string) {
	r.bus.Publish(model.Progress{Run: ref, Stage: stage, Of: runStages, Text: text})
}

func (r *Runner) fail(ref model.RunRef, err error) {
	r.finish(ref, model.Error{Run: ref, Err: err, Message: errorMessage(err)})
}

// finish releases the profile before publishing so a consumer reacting to the
// terminal event can start the next run immediately.
func (r *Runner) finish(ref model.RunRef, terminal model.ImportEvent) {
	r.mu.Lock()
	delete(r.inFlight, ref.Profile)
	r.mu.Unlock()

	r.bus.Publish(terminal)
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrDeckUnresolvable):
		return "Deck could not be found or created: " + err.Error()
	case errors.Is(err, common.ErrStoreUnavailable):
		return "Anki is not reachable. Ensure Anki is running with AnkiConnect: " + err.Error()
	default:
		return err.Error()
	}
}
