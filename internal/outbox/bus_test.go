package outbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/servana/eventrelay/internal/domain/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishWithoutSubscribersSucceeds(t *testing.T) {
	bus := NewBus()
	err := bus.Publish(context.Background(), event.Event{EventType: "nobody.cares"})
	assert.NoError(t, err)
}

func TestPublishAttemptsEveryHandler(t *testing.T) {
	bus := NewBus()
	errBoom := errors.New("boom")

	var calls atomic.Int32
	bus.Subscribe("contract.created", func(context.Context, event.Event) error {
		calls.Add(1)
		return nil
	})
	bus.Subscribe("contract.created", func(context.Context, event.Event) error {
		calls.Add(1)
		return errBoom
	})
	bus.Subscribe("contract.created", func(context.Context, event.Event) error {
		calls.Add(1)
		return nil
	})

	err := bus.Publish(context.Background(), event.Event{EventType: "contract.created"})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPublishOnlyMatchingType(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	var seen []string
	handler := func(name string) Handler {
		return func(context.Context, event.Event) error {
			mu.Lock()
			seen = append(seen, name)
			mu.Unlock()
			return nil
		}
	}
	bus.Subscribe("contract.created", handler("created"))
	bus.Subscribe("contract.deleted", handler("deleted"))

	ev := event.Event{ID: uuid.New(), EventType: "contract.created"}
	require.NoError(t, bus.Publish(context.Background(), ev))
	assert.Equal(t, []string{"created"}, seen)
}

func TestUnsubscribeRemovesHandler(t *testing.T) {
	bus := NewBus()
	called := false
	sub := bus.Subscribe("contract.updated", func(context.Context, event.Event) error {
		called = true
		return nil
	})
	require.True(t, bus.HasHandlers("contract.updated"))

	assert.True(t, bus.Unsubscribe(sub))
	assert.False(t, bus.HasHandlers("contract.updated"))

	require.NoError(t, bus.Publish(context.Background(), event.Event{EventType: "contract.updated"}))
	assert.False(t, called)

	// A second removal of the same token is a no-op.
	assert.False(t, bus.Unsubscribe(sub))
	assert.False(t, bus.Unsubscribe(nil))
}

func TestTypesListsRegisteredEventTypes(t *testing.T) {
	bus := NewBus()
	assert.Empty(t, bus.Types())

	bus.Subscribe("contract.created", func(context.Context, event.Event) error { return nil })
	bus.Subscribe("contract.created", func(context.Context, event.Event) error { return nil })
	sub := bus.Subscribe("contract.deleted", func(context.Context, event.Event) error { return nil })

	assert.ElementsMatch(t, []string{"contract.created", "contract.deleted"}, bus.Types())

	bus.Unsubscribe(sub)
	assert.ElementsMatch(t, []string{"contract.created"}, bus.Types())
}
