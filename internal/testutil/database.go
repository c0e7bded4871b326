// Package testutil provides shared test helpers: an isolated run journal, a
// fluent builder for the in-memory card store and canned vocabulary input.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/ankiflow/internal/service"
	"github.com/Veraticus/ankiflow/internal/storage"
)

// SetupTestJournal creates a migrated in-memory journal that is closed when
// the test ends.
func SetupTestJournal(t *testing.T) *storage.SQLiteJournal {
	t.Helper()

	journal, err := storage.OpenJournal(context.Background(), storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test journal: %v", err)
	}

	t.Cleanup(func() {
		_ = journal.Close()
	})

	return journal
}

// SetupTestJournalWithRuns creates a journal seeded with runs and actions.
func SetupTestJournalWithRuns(t *testing.T, runs []service.RunRecord, actions []service.ActionRecord) *storage.SQLiteJournal {
	t.Helper()

	journal := SetupTestJournal(t)
	ctx := context.Background()
	for _, run := range runs {
		if err := journal.RecordRun(ctx, run); err != nil {
			t.Fatalf("failed to seed run %s#%d: %v", run.Profile, run.Seq, err)
		}
	}
	for _, action := range actions {
		if err := journal.RecordAction(ctx, action); err != nil {
			t.Fatalf("failed to seed action %s: %v", action.ItemID, err)
		}
	}
	return journal
}
