package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(Event{Type: TypeUnitLoaded, UnitID: "home"})

	select {
	case ev := <-ch:
		assert.Equal(t, TypeUnitLoaded, ev.Type)
		assert.Equal(t, "home", ev.UnitID)
		assert.False(t, ev.Time.IsZero())
	case <-time.After(time.Second):
		t.Fatal("expected event")
	}
}

func TestBusCancelRemovesSubscriber(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	require.Equal(t, 1, bus.Subscribers())

	cancel()
	assert.Equal(t, 0, bus.Subscribers())

	// Channel is closed after cancel
	_, open := <-ch
	assert.False(t, open)

	// Double cancel is safe
	cancel()
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	// Overfill the subscriber buffer; Publish must not block
	for i := 0; i < 200; i++ {
		bus.Publish(Event{Type: TypeUnitLoading, UnitID: "x"})
	}

	drained := 0
	for {
		select {
		case <-ch:
			drained++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 64, drained)
}
