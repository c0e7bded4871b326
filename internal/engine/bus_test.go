package engine

import (
	"sync"
	"testing"

	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestBus_DrainIsNonBlocking(t *testing.T) {
	bus := NewBus(4)
	assert.Empty(t, bus.Drain())

	bus.Publish(model.Progress{Text: "one"})
	bus.Publish(model.Progress{Text: "two"})
	assert.Equal(t, 2, bus.Len())

	events := bus.Drain()
	assert.Equal(t, []model.ImportEvent{model.Progress{Text: "one"}, model.Progress{Text: "two"}}, events)
	assert.Empty(t, bus.Drain())
}

func TestBus_DefaultCapacity(t *testing.T) {
	bus := NewBus(0)
	assert.Equal(t, DefaultEventBuffer, cap(bus.events))
}

func TestBus_PreservesPerProducerOrder(t *testing.T) {
	bus := NewBus(1000)

	var wg sync.WaitGroup
	for _, profile := range []model.ProfileID{model.ProfilePassive, model.ProfileActive} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 1; i <= 100; i++ {
				bus.Publish(model.Progress{Run: model.RunRef{Profile: profile, Seq: 1}, Stage: i})
			}
		}()
	}
	wg.Wait()

	last := map[model.ProfileID]int{}
	for _, ev := range bus.Drain() {
		p := ev.(model.Progress)
		assert.Equal(t, last[p.Run.Profile]+1, p.Stage)
		last[p.Run.Profile] = p.Stage
	}
	assert.Equal(t, 100, last[model.ProfilePassive])
	assert.Equal(t, 100, last[model.ProfileActive])
}
