package model

import "fmt"

// NoteID is the store's opaque note identifier.
type NoteID int64

// CardID is the store's opaque card identifier.
type CardID int64

// ItemID identifies a result item across producers ("<profile>:<line>").
type ItemID string

// ExistingNoteRef is a note already in the store whose front matches a classified card.
type ExistingNoteRef struct {
	CurrentBack string
	DeckName    string // deck of the note's first card; empty if it could not be resolved
	NoteID      NoteID
}

// DuplicateInStore is a card whose front already exists somewhere in the store.
type DuplicateInStore struct {
	ID       ItemID
	Existing ExistingNoteRef
	Card     ClassifiedCard
}

// DuplicateInBatch is a card whose front was already claimed earlier in the same submission.
type DuplicateInBatch struct {
	ID   ItemID
	Card ClassifiedCard
}

// FailedWrite is a staged card the store rejected, or that was staged when the bulk write failed.
type FailedWrite struct {
	ID     ItemID
	Reason string
	Card   ClassifiedCard
}

// Unparsable is an input line no classifier rule accepted.
type Unparsable struct {
	ID   ItemID
	Line RawLine
}

// PartitionResult accounts for every non-blank input line of one run.
// The five buckets are disjoint and together cover the whole input.
type PartitionResult struct {
	Profile          ProfileID
	DuplicateInStore []DuplicateInStore
	DuplicateInBatch []DuplicateInBatch
	FailedWrite      []FailedWrite
	Unparsable       []Unparsable
	Added            int
}

// Counts summarises a PartitionResult.
type Counts struct {
	Added            int
	DuplicateInStore int
	DuplicateInBatch int
	FailedWrite      int
	Unparsable       int
}

// Counts returns the bucket sizes.
func (r PartitionResult) Counts() Counts {
	return Counts{
		Added:            r.Added,
		DuplicateInStore: len(r.DuplicateInStore),
		DuplicateInBatch: len(r.DuplicateInBatch),
		FailedWrite:      len(r.FailedWrite),
		Unparsable:       len(r.Unparsable),
	}
}

// Total is the number of lines accounted for.
func (c Counts) Total() int {
	return c.Added + c.DuplicateInStore + c.DuplicateInBatch + c.FailedWrite + c.Unparsable
}

func (c Counts) String() string {
	return fmt.Sprintf("added %d, duplicates %d in store / %d in batch, failed %d, unparsable %d",
		c.Added, c.DuplicateInStore, c.DuplicateInBatch, c.FailedWrite, c.Unparsable)
}
