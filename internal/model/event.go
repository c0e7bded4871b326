package model

import "fmt"

// ImportEvent is a message from a background worker to the single consumer.
// Implementations: Progress, Complete, Error, ActionDone.
type ImportEvent interface {
	isImportEvent()
}

// RunRef identifies the import run an event belongs to.
type RunRef struct {
	Profile ProfileID
	Seq     int // increments per profile for each started run
}

func (r RunRef) String() string {
	return fmt.Sprintf("%s#%d", r.Profile, r.Seq)
}

// Progress reports that a run entered a new stage.
type Progress struct {
	Text  string
	Run   RunRef
	Stage int
	Of    int
}

// Complete is the terminal event of a successful run.
type Complete struct {
	Summary   string
	Run       RunRef
	Partition PartitionResult
}

// Error is the terminal event of a failed run. Nothing follows it for the same run.
type Error struct {
	Err     error
	Message string
	Run     RunRef
}

// ActionDone reports the outcome of one resolution action.
// Err is nil on success; the consumer then removes the item from its live view.
type ActionDone struct {
	Err    error
	ItemID ItemID
	Kind   ActionKind
	NoteID NoteID
}

func (Progress) isImportEvent()   {}
func (Complete) isImportEvent()   {}
func (Error) isImportEvent()      {}
func (ActionDone) isImportEvent() {}

// ActionKind is one of the remediation actions available for a duplicate.
type ActionKind string

// Resolution actions. ActionDismiss is local to the consumer and never reaches the store.
const (
	ActionMerge      ActionKind = "merge"
	ActionReschedule ActionKind = "reschedule"
	ActionDefer      ActionKind = "defer"
	ActionDismiss    ActionKind = "dismiss"
)

// ParseActionKind converts user input into an ActionKind.
func ParseActionKind(s string) (ActionKind, error) {
	switch k := ActionKind(s); k {
	case ActionMerge, ActionReschedule, ActionDefer, ActionDismiss:
		return k, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// Remote reports whether the action mutates store state.
func (k ActionKind) Remote() bool {
	return k == ActionMerge || k == ActionReschedule || k == ActionDefer
}
