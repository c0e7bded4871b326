package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/ankiflow/internal/common"
	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/service"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultSeparator joins the old and new back of a merged note.
	DefaultSeparator = "<hr>"
	// DefaultActionLimit is how many actions talk to the store at once.
	DefaultActionLimit = 4
)

// Target is a result item a resolution action may be requested for.
type Target struct {
	ID      model.ItemID
	NewBack string
	NoteID  model.NoteID // zero when the item has no note in the store
}

// TargetForStoreDuplicate targets the existing note of a duplicate-in-store item.
func TargetForStoreDuplicate(d model.DuplicateInStore) Target {
	return Target{ID: d.ID, NoteID: d.Existing.NoteID, NewBack: d.Card.Back}
}

// TargetForBatchDuplicate targets an in-batch duplicate. It has no note, so
// only local dismissal applies to it.
func TargetForBatchDuplicate(d model.DuplicateInBatch) Target {
	return Target{ID: d.ID, NewBack: d.Card.Back}
}

// Executor runs resolution actions in the background, at most one per item,
// and reports each outcome as an ActionDone event. Started actions beyond the
// limit wait for a free slot; they count as busy while they wait.
type Executor struct {
	store     service.CardStore
	bus       *Bus
	slots     *semaphore.Weighted
	inFlight  map[model.ItemID]bool
	separator string
	limit     int
	wg        sync.WaitGroup
	mu        sync.Mutex
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithActionLimit caps how many actions run against the store at once.
// Values below one are ignored.
func WithActionLimit(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.limit = n
		}
	}
}

// NewExecutor creates an executor. An empty separator means DefaultSeparator.
func NewExecutor(store service.CardStore, bus *Bus, separator string, opts ...ExecutorOption) *Executor {
	if separator == "" {
		separator = DefaultSeparator
	}
	e := &Executor{
		store:     store,
		bus:       bus,
		separator: separator,
		limit:     DefaultActionLimit,
		inFlight:  make(map[model.ItemID]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.slots = semaphore.NewWeighted(int64(e.limit))
	return e
}

// Start launches kind against target. Dismissal never reaches the store and is
// rejected here; the consumer handles it locally.
func (e *Executor) Start(ctx context.Context, target Target, kind model.ActionKind) error {
	if !kind.Remote() {
		return fmt.Errorf("action %q does not touch the store", kind)
	}
	if target.NoteID == 0 {
		return fmt.Errorf("%w: %s", common.ErrNoRemoteIdentity, target.ID)
	}

	e.mu.Lock()
	if e.inFlight[target.ID] {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", common.ErrActionInFlight, target.ID)
	}
	e.inFlight[target.ID] = true
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx := context.WithoutCancel(ctx)
		// Acquire cannot fail: ctx is never canceled.
		_ = e.slots.Acquire(ctx, 1)
		defer e.slots.Release(1)
		e.execute(ctx, target, kind)
	}()
	return nil
}

// Busy reports whether an action for the item is running or waiting for a slot.
func (e *Executor) Busy(id model.ItemID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight[id]
}

// Wait blocks until every started action has reported.
func (e *Executor) Wait() {
	e.wg.Wait()
}

func (e *Executor) execute(ctx context.Context, target Target, kind model.ActionKind) {
	var err error
	switch kind {
	case model.ActionMerge:
		err = e.merge(ctx, target)
	case model.ActionReschedule:
		err = e.reschedule(ctx, target.NoteID)
	case model.ActionDefer:
		err = e.deferEdit(ctx, target.NoteID)
	}

	done := model.ActionDone{ItemID: target.ID, Kind: kind, NoteID: target.NoteID}
	if err != nil {
		slog.Error("Resolution action failed", "item", target.ID, "action", kind, "note", target.NoteID, "error", err)
		done.Err = fmt.Errorf("%w: %s: %w", common.ErrActionFailed, kind, err)
	} else {
		slog.Info("Resolution action done", "item", target.ID, "action", kind, "note", target.NoteID)
	}

	e.mu.Lock()
	delete(e.inFlight, target.ID)
	e.mu.Unlock()

	e.bus.Publish(done)
}

// merge appends the new back to the note's current back, then reschedules.
// The current back is read fresh so concurrent edits in the store are kept.
func (e *Executor) merge(ctx context.Context, target Target) error {
	notes, err := e.store.FetchNoteFields(ctx, []model.NoteID{target.NoteID})
	if err != nil {
		return fmt.Errorf("failed to read note: %w", err)
	}
	if len(notes) == 0 {
		return fmt.Errorf("%w: %d", common.ErrNoteNotFound, target.NoteID)
	}

	merged := notes[0].Back + e.separator + target.NewBack
	if err := e.store.UpdateNoteBack(ctx, target.NoteID, merged); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return e.reschedule(ctx, target.NoteID)
}

// deferEdit opens the note in the store's editor and reschedules without
// waiting for the edit.
func (e *Executor) deferEdit(ctx context.Context, noteID model.NoteID) error {
	if err := e.store.OpenEditor(ctx, noteID); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return e.reschedule(ctx, noteID)
}

// reschedule unsuspends every card of the note and resets it to new.
func (e *Executor) reschedule(ctx context.Context, noteID model.NoteID) error {
	cards, err := e.store.FindCardsByNoteIDs(ctx, []model.NoteID{noteID})
	if err != nil {
		return fmt.Errorf("failed to find cards: %w", err)
	}
	if len(cards) == 0 {
		return fmt.Errorf("%w: note %d has no cards", common.ErrNoteNotFound, noteID)
	}
	if err := e.store.Unsuspend(ctx, cards); err != nil {
		return fmt.Errorf("failed to unsuspend cards: %w", err)
	}
	if err := e.store.ResetToNew(ctx, cards); err != nil {
		return fmt.Errorf("failed to reset cards: %w", err)
	}
	return nil
}
