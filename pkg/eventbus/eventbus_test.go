package eventbus_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/vantage/pkg/eventbus"
)

type createdEvent struct {
	ID string
}

type updatedEvent struct {
	ID string
}

func TestEventBus_PublishToMatchingSubscriber(t *testing.T) {
	t.Parallel()
	bus := eventbus.NewEventPublisher(logrus.New())

	var got []string
	bus.Subscribe(func(e createdEvent) {
		got = append(got, e.ID)
	})
	bus.Subscribe(func(e updatedEvent) {
		t.Errorf("updated handler should not receive created event")
	})

	bus.Publish(createdEvent{ID: "a"})
	bus.Publish(createdEvent{ID: "b"})

	require.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 2, bus.SubscribersCount())
}

func TestEventBus_Unsubscribe(t *testing.T) {
	t.Parallel()
	bus := eventbus.NewEventPublisher(logrus.New())

	calls := 0
	handler := func(e createdEvent) { calls++ }
	bus.Subscribe(handler)
	bus.Publish(createdEvent{ID: "a"})
	bus.Unsubscribe(handler)
	bus.Publish(createdEvent{ID: "b"})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.SubscribersCount())
}

func TestMatchSignature(t *testing.T) {
	t.Parallel()

	handler := func(e createdEvent) {}
	assert.True(t, eventbus.MatchSignature(handler, []interface{}{createdEvent{}}))
	assert.False(t, eventbus.MatchSignature(handler, []interface{}{updatedEvent{}}))
	assert.False(t, eventbus.MatchSignature(handler, []interface{}{createdEvent{}, 1}))
	assert.False(t, eventbus.MatchSignature(42, []interface{}{createdEvent{}}))
}

func TestEventBus_Clear(t *testing.T) {
	t.Parallel()
	bus := eventbus.NewEventPublisher(logrus.New())
	bus.Subscribe(func(e createdEvent) {})
	bus.Clear()
	assert.Equal(t, 0, bus.SubscribersCount())
}
