package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/ankiflow/internal/common"
	"github.com/Veraticus/ankiflow/internal/engine"
	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

var testProfile = testutil.PassiveProfile()

func TestWatcher_ReportsAndJournalsRun(t *testing.T) {
	store := engine.NewMockStore(testProfile.DeckName)
	store.AddNote(testProfile.DeckName, "ばらまき", "old")
	bus := engine.NewBus(32)
	runner := engine.NewRunner(store, bus)
	journal := testutil.SetupTestJournal(t)
	out := &syncBuffer{}

	watcher, err := NewWatcher(WatcherConfig{
		Bus:          bus,
		Journal:      journal,
		Writer:       out,
		Decks:        map[model.ProfileID]string{model.ProfilePassive: testProfile.DeckName},
		PollInterval: time.Millisecond,
		ShowProgress: true,
	})
	require.NoError(t, err)

	ref, err := runner.Start(context.Background(), testProfile, []string{
		"ばらまきspending recklessly",
		"あいうえお",
		"hello",
	})
	require.NoError(t, err)

	report, err := watcher.Watch(context.Background(), ref)
	require.NoError(t, err)

	result := report.Results[model.ProfilePassive]
	assert.Equal(t, 1, result.Added)
	assert.Len(t, result.DuplicateInStore, 1)
	assert.Len(t, result.Unparsable, 1)
	assert.Empty(t, report.Failures)
	assert.Contains(t, out.String(), "1 already in Anki")
	assert.Contains(t, out.String(), "line 3: hello")

	runs, err := journal.RecentRuns(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.Counts{Added: 1, DuplicateInStore: 1, Unparsable: 1}, runs[0].Counts)
	assert.Equal(t, testProfile.DeckName, runs[0].Deck)
}

func TestWatcher_ResolvesDuplicates(t *testing.T) {
	store := engine.NewMockStore(testProfile.DeckName)
	noteID, cardID := store.AddNote("Other", "ばらまき", "old")
	bus := engine.NewBus(32)
	runner := engine.NewRunner(store, bus)
	executor := engine.NewExecutor(store, bus, "<hr>")
	journal := testutil.SetupTestJournal(t)

	watcher, err := NewWatcher(WatcherConfig{
		Bus:          bus,
		Executor:     executor,
		Journal:      journal,
		Writer:       &syncBuffer{},
		Decks:        map[model.ProfileID]string{model.ProfilePassive: testProfile.DeckName},
		OnDuplicate:  model.ActionMerge,
		PollInterval: time.Millisecond,
	})
	require.NoError(t, err)

	ref, err := runner.Start(context.Background(), testProfile, []string{"ばらまきspending recklessly"})
	require.NoError(t, err)

	report, err := watcher.Watch(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ActionsDone)
	assert.Equal(t, 0, report.ActionsFailed)

	back, _, ok := store.Note(noteID)
	require.True(t, ok)
	assert.Equal(t, "old<hr>spending recklessly", back)
	assert.True(t, store.WasReset(cardID))

	actions, err := journal.RecentActions(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, model.ActionMerge, actions[0].Kind)
	assert.Equal(t, noteID, actions[0].NoteID)
}

func TestWatcher_RunError(t *testing.T) {
	store := engine.NewMockStore(testProfile.DeckName)
	store.FailOn("DeckExists", common.ErrStoreUnavailable)
	bus := engine.NewBus(32)
	runner := engine.NewRunner(store, bus)
	out := &syncBuffer{}

	watcher, err := NewWatcher(WatcherConfig{Bus: bus, Writer: out, PollInterval: time.Millisecond})
	require.NoError(t, err)

	ref, err := runner.Start(context.Background(), testProfile, []string{"あいうえお"})
	require.NoError(t, err)

	report, err := watcher.Watch(context.Background(), ref)
	require.NoError(t, err)
	require.ErrorIs(t, report.Failures[model.ProfilePassive], common.ErrStoreUnavailable)
	assert.Contains(t, out.String(), "passive import failed")
}

func TestWatcher_IgnoresOtherRuns(t *testing.T) {
	bus := engine.NewBus(8)
	watcher, err := NewWatcher(WatcherConfig{Bus: bus, Writer: &syncBuffer{}, PollInterval: time.Millisecond})
	require.NoError(t, err)

	mine := model.RunRef{Profile: model.ProfileActive, Seq: 1}
	bus.Publish(model.Complete{Run: model.RunRef{Profile: model.ProfilePassive, Seq: 1}})
	bus.Publish(model.ActionDone{ItemID: "passive:1", Kind: model.ActionReschedule})
	bus.Publish(model.Complete{Run: mine, Partition: model.PartitionResult{Profile: model.ProfileActive, Added: 2}})

	report, err := watcher.Watch(context.Background(), mine)
	require.NoError(t, err)
	assert.Len(t, report.Results, 1)
	assert.Equal(t, 2, report.Results[model.ProfileActive].Added)
	assert.Equal(t, 0, report.ActionsDone)
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	bus := engine.NewBus(8)
	watcher, err := NewWatcher(WatcherConfig{Bus: bus, Writer: &syncBuffer{}, PollInterval: time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = watcher.Watch(ctx, model.RunRef{Profile: model.ProfilePassive, Seq: 1})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewWatcher_Validation(t *testing.T) {
	_, err := NewWatcher(WatcherConfig{})
	require.Error(t, err)

	_, err = NewWatcher(WatcherConfig{Bus: engine.NewBus(1), OnDuplicate: model.ActionMerge})
	require.Error(t, err, "merge without an executor")

	_, err = NewWatcher(WatcherConfig{Bus: engine.NewBus(1), OnDuplicate: model.ActionDismiss})
	require.Error(t, err)
}
