package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/service"
)

// RecordRun appends a finished run.
func (s *SQLiteJournal) RecordRun(ctx context.Context, run service.RunRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (profile, seq, deck, added, duplicate_in_store, duplicate_in_batch,
			failed_write, unparsable, error, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(run.Profile), run.Seq, run.Deck,
		run.Counts.Added, run.Counts.DuplicateInStore, run.Counts.DuplicateInBatch,
		run.Counts.FailedWrite, run.Counts.Unparsable,
		run.Error, run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *SQLiteJournal) RecentRuns(ctx context.Context, limit int) ([]service.RunRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile, seq, deck, added, duplicate_in_store, duplicate_in_batch,
			failed_write, unparsable, error, finished_at
		FROM runs
		ORDER BY finished_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []service.RunRecord
	for rows.Next() {
		var (
			run        service.RunRecord
			profile    string
			finishedAt time.Time
		)
		if err := rows.Scan(&run.ID, &profile, &run.Seq, &run.Deck,
			&run.Counts.Added, &run.Counts.DuplicateInStore, &run.Counts.DuplicateInBatch,
			&run.Counts.FailedWrite, &run.Counts.Unparsable,
			&run.Error, &finishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Profile = model.ProfileID(profile)
		run.FinishedAt = finishedAt.UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// RecordAction appends a resolution action outcome.
func (s *SQLiteJournal) RecordAction(ctx context.Context, action service.ActionRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAction(action); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actions (item_id, kind, note_id, error, at)
		VALUES (?, ?, ?, ?, ?)`,
		string(action.ItemID), string(action.Kind), int64(action.NoteID), action.Error, action.At.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	return nil
}

// RecentActions returns up to limit action outcomes, newest first.
func (s *SQLiteJournal) RecentActions(ctx context.Context, limit int) ([]service.ActionRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, kind, note_id, error, at
		FROM actions
		ORDER BY at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var actions []service.ActionRecord
	for rows.Next() {
		var (
			action service.ActionRecord
			itemID string
			kind   string
			noteID int64
			at     time.Time
		)
		if err := rows.Scan(&itemID, &kind, &noteID, &action.Error, &at); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		action.ItemID = model.ItemID(itemID)
		action.Kind = model.ActionKind(kind)
		action.NoteID = model.NoteID(noteID)
		action.At = at.UTC()
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate actions: %w", err)
	}
	return actions, nil
}
