// Package components holds the reusable TUI widgets.
package components

import (
	"github.com/Veraticus/ankiflow/internal/engine"
	"github.com/Veraticus/ankiflow/internal/model"
)

// ItemKind is the partition bucket an item came from.
type ItemKind int

// Item kinds in display order.
const (
	ItemStoreDuplicate ItemKind = iota
	ItemBatchDuplicate
	ItemFailedWrite
	ItemUnparsable
)

func (k ItemKind) String() string {
	switch k {
	case ItemStoreDuplicate:
		return "in Anki"
	case ItemBatchDuplicate:
		return "in batch"
	case ItemFailedWrite:
		return "failed"
	case ItemUnparsable:
		return "unparsable"
	default:
		return "unknown"
	}
}

// Item is one actionable row of a finished run.
type Item struct {
	ID           model.ItemID
	Profile      model.ProfileID
	Front        string
	Back         string
	ExistingBack string
	Deck         string
	Detail       string
	LastError    string
	NoteID       model.NoteID
	Kind         ItemKind
	Busy         bool
}

// Target converts the item into an action target.
func (i Item) Target() engine.Target {
	return engine.Target{ID: i.ID, NewBack: i.Back, NoteID: i.NoteID}
}

// ItemsFromPartition lists every non-added entry of a partition.
func ItemsFromPartition(result model.PartitionResult) []Item {
	items := make([]Item, 0, len(result.DuplicateInStore)+len(result.DuplicateInBatch)+
		len(result.FailedWrite)+len(result.Unparsable))

	for _, d := range result.DuplicateInStore {
		items = append(items, Item{
			ID:           d.ID,
			Profile:      result.Profile,
			Kind:         ItemStoreDuplicate,
			Front:        d.Card.Front,
			Back:         d.Card.Back,
			ExistingBack: d.Existing.CurrentBack,
			Deck:         d.Existing.DeckName,
			NoteID:       d.Existing.NoteID,
		})
	}
	for _, d := range result.DuplicateInBatch {
		items = append(items, Item{
			ID:      d.ID,
			Profile: result.Profile,
			Kind:    ItemBatchDuplicate,
			Front:   d.Card.Front,
			Back:    d.Card.Back,
		})
	}
	for _, f := range result.FailedWrite {
		items = append(items, Item{
			ID:      f.ID,
			Profile: result.Profile,
			Kind:    ItemFailedWrite,
			Front:   f.Card.Front,
			Back:    f.Card.Back,
			Detail:  f.Reason,
		})
	}
	for _, u := range result.Unparsable {
		items = append(items, Item{
			ID:      u.ID,
			Profile: result.Profile,
			Kind:    ItemUnparsable,
			Front:   u.Line.Text,
		})
	}
	return items
}
