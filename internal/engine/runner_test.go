package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/ankiflow/internal/common"
	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_CompleteRun(t *testing.T) {
	store := NewMockStore(passiveDeck)
	store.AddNote("Elsewhere", "ばらまき", "old meaning")
	bus := NewBus(64)
	runner := NewRunner(store, bus)

	lines := []string{
		"ばらまきspending (money) recklessly",
		"",
		"(摯) し sincerity, admonish",
		"   ",
		"hello world",
		"(摯) another reading",
		"あいうえお",
	}

	ref, err := runner.Start(context.Background(), passiveProfile(), lines)
	require.NoError(t, err)
	assert.Equal(t, model.RunRef{Profile: model.ProfilePassive, Seq: 1}, ref)
	runner.Wait()

	events := eventsFor(bus.Drain(), ref)
	require.Len(t, events, 4)
	for i, ev := range events[:3] {
		p, ok := ev.(model.Progress)
		require.True(t, ok, "event %d should be progress", i)
		assert.Equal(t, i+1, p.Stage)
		assert.Equal(t, 3, p.Of)
	}

	complete, ok := events[3].(model.Complete)
	require.True(t, ok)
	result := complete.Partition
	assert.Equal(t, 5, result.Counts().Total())
	assert.Equal(t, 2, result.Added)
	require.Len(t, result.DuplicateInStore, 1)
	assert.Equal(t, model.ItemID("passive:1"), result.DuplicateInStore[0].ID)
	assert.Equal(t, "Elsewhere", result.DuplicateInStore[0].Existing.DeckName)
	require.Len(t, result.DuplicateInBatch, 1)
	assert.Equal(t, model.ItemID("passive:6"), result.DuplicateInBatch[0].ID)
	require.Len(t, result.Unparsable, 1)
	assert.Equal(t, model.ItemID("passive:5"), result.Unparsable[0].ID)
	assert.Equal(t, "hello world", result.Unparsable[0].Line.Text)
	assert.Equal(t, result.Counts().String(), complete.Summary)

	assert.False(t, runner.Running(model.ProfilePassive))
}

func TestRunner_CreatesMissingDeck(t *testing.T) {
	store := NewMockStore()
	bus := NewBus(16)
	runner := NewRunner(store, bus)

	ref, err := runner.Start(context.Background(), activeProfile(), []string{"(to scatter) ばらまく"})
	require.NoError(t, err)
	runner.Wait()

	events := eventsFor(bus.Drain(), ref)
	require.NotEmpty(t, events)
	complete, ok := events[len(events)-1].(model.Complete)
	require.True(t, ok)
	assert.Equal(t, 1, complete.Partition.Added)
	assert.Equal(t, []any{activeDeck}, store.CallsTo("CreateDeck"))
}

func TestRunner_DeckUnresolvable(t *testing.T) {
	store := NewMockStore()
	store.FailOn("CreateDeck", errors.New("collection is not available"))
	bus := NewBus(16)
	runner := NewRunner(store, bus)

	ref, err := runner.Start(context.Background(), passiveProfile(), []string{"あいうえお"})
	require.NoError(t, err)
	runner.Wait()

	events := eventsFor(bus.Drain(), ref)
	require.Len(t, events, 2)
	assert.IsType(t, model.Progress{}, events[0])
	failed, ok := events[1].(model.Error)
	require.True(t, ok)
	require.ErrorIs(t, failed.Err, common.ErrDeckUnresolvable)
	assert.Contains(t, failed.Message, "collection is not available")

	assert.Empty(t, store.CallsTo("FindNotesByFrontAnyOf"))
	assert.Empty(t, store.CallsTo("BulkAddNotes"))
}

func TestRunner_StoreUnavailable(t *testing.T) {
	store := NewMockStore(passiveDeck)
	store.FailOn("FindNotesByFrontAnyOf", common.ErrStoreUnavailable)
	bus := NewBus(16)
	runner := NewRunner(store, bus)

	ref, err := runner.Start(context.Background(), passiveProfile(), []string{"あいうえお"})
	require.NoError(t, err)
	runner.Wait()

	events := eventsFor(bus.Drain(), ref)
	require.Len(t, events, 4)
	failed, ok := events[3].(model.Error)
	require.True(t, ok)
	require.ErrorIs(t, failed.Err, common.ErrStoreUnavailable)
	assert.Contains(t, failed.Message, "AnkiConnect")
}

func TestRunner_OneRunPerProfile(t *testing.T) {
	store := newGatedStore(passiveDeck, activeDeck)
	bus := NewBus(64)
	runner := NewRunner(store, bus)
	ctx := context.Background()

	first, err := runner.Start(ctx, passiveProfile(), []string{"あいうえお"})
	require.NoError(t, err)
	assert.True(t, runner.Running(model.ProfilePassive))

	_, err = runner.Start(ctx, passiveProfile(), []string{"かきくけこ"})
	require.ErrorIs(t, err, common.ErrRunInFlight)

	other, err := runner.Start(ctx, activeProfile(), []string{"(to scatter) ばらまく"})
	require.NoError(t, err, "a different profile may run concurrently")

	close(store.gate)
	runner.Wait()

	events := bus.Drain()
	for _, ref := range []model.RunRef{first, other} {
		run := eventsFor(events, ref)
		require.NotEmpty(t, run)
		assert.IsType(t, model.Complete{}, run[len(run)-1])
	}

	second, err := runner.Start(ctx, passiveProfile(), []string{"かきくけこ"})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Seq)
	runner.Wait()
}

func TestRunner_CancelledContextDoesNotStopRun(t *testing.T) {
	store := NewMockStore(passiveDeck)
	bus := NewBus(16)
	runner := NewRunner(store, bus)

	ctx, cancel := context.WithCancel(context.Background())
	ref, err := runner.Start(ctx, passiveProfile(), []string{"あいうえお"})
	require.NoError(t, err)
	cancel()
	runner.Wait()

	events := eventsFor(bus.Drain(), ref)
	require.NotEmpty(t, events)
	complete, ok := events[len(events)-1].(model.Complete)
	require.True(t, ok)
	assert.Equal(t, 1, complete.Partition.Added)
}
