package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/service"
)

// RunFromEvent converts a terminal run event into a journal record.
// ok is false for events that do not end a run.
func RunFromEvent(event model.ImportEvent, deck string, at time.Time) (record service.RunRecord, ok bool) {
	switch e := event.(type) {
	case model.Complete:
		return service.RunRecord{
			Profile:    e.Run.Profile,
			Seq:        e.Run.Seq,
			Deck:       deck,
			Counts:     e.Partition.Counts(),
			FinishedAt: at,
		}, true
	case model.Error:
		msg := e.Message
		if msg == "" && e.Err != nil {
			msg = e.Err.Error()
		}
		return service.RunRecord{
			Profile:    e.Run.Profile,
			Seq:        e.Run.Seq,
			Deck:       deck,
			Error:      msg,
			FinishedAt: at,
		}, true
	default:
		return service.RunRecord{}, false
	}
}

// ActionFromEvent converts an action outcome into a journal record.
func ActionFromEvent(done model.ActionDone, at time.Time) service.ActionRecord {
	record := service.ActionRecord{
		ItemID: done.ItemID,
		Kind:   done.Kind,
		NoteID: done.NoteID,
		At:     at,
	}
	if done.Err != nil {
		record.Error = done.Err.Error()
	}
	return record
}

// RecordEvents journals every terminal run event and action outcome in
// events; other events are skipped. decks names the deck of each profile.
// It records as much as it can and returns the joined failures.
func RecordEvents(ctx context.Context, journal service.RunJournal, events []model.ImportEvent,
	decks map[model.ProfileID]string, at time.Time,
) error {
	var errs []error
	for _, event := range events {
		switch e := event.(type) {
		case model.Complete:
			record, _ := RunFromEvent(e, decks[e.Run.Profile], at)
			if err := journal.RecordRun(ctx, record); err != nil {
				errs = append(errs, fmt.Errorf("run %s: %w", e.Run, err))
			}
		case model.Error:
			record, _ := RunFromEvent(e, decks[e.Run.Profile], at)
			if err := journal.RecordRun(ctx, record); err != nil {
				errs = append(errs, fmt.Errorf("run %s: %w", e.Run, err))
			}
		case model.ActionDone:
			if err := journal.RecordAction(ctx, ActionFromEvent(e, at)); err != nil {
				errs = append(errs, fmt.Errorf("action %s: %w", e.ItemID, err))
			}
		}
	}
	return errors.Join(errs...)
}
