// Package engine implements the import pipeline: reconciliation of classified
// cards against the card store, the background run and action workers, and the
// event bus they report through.
package engine

import (
	"time"

	"github.com/Veraticus/ankiflow/internal/model"
)

// DefaultEventBuffer is the bus capacity used when none is configured.
const DefaultEventBuffer = 256

// Bus carries ImportEvents from any number of background workers to a single
// consumer. Events from one producer keep their order; events from different
// producers interleave arbitrarily.
type Bus struct {
	events chan model.ImportEvent
}

// NewBus creates a bus with the given buffer capacity.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultEventBuffer
	}
	return &Bus{events: make(chan model.ImportEvent, capacity)}
}

// Publish enqueues an event. It blocks while the buffer is full.
func (b *Bus) Publish(event model.ImportEvent) {
	b.events <- event
}

// Drain returns every event currently queued without waiting for more.
// Only the consumer may call it.
func (b *Bus) Drain() []model.ImportEvent {
	var drained []model.ImportEvent
	for {
		select {
		case event := <-b.events:
			drained = append(drained, event)
		default:
			return drained
		}
	}
}

// DrainWhile calls wait and keeps draining the bus every interval until it
// returns, so workers blocked in Publish can finish. It returns everything
// drained, including what was queued after wait returned. Only the consumer
// may call it.
func (b *Bus) DrainWhile(interval time.Duration, wait func()) []model.ImportEvent {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		wait()
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var drained []model.ImportEvent
	for {
		select {
		case <-done:
			return append(drained, b.Drain()...)
		case <-ticker.C:
			drained = append(drained, b.Drain()...)
		}
	}
}

// Len is the number of queued events.
func (b *Bus) Len() int {
	return len(b.events)
}
