package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewEventBus()

	var got []*Event
	bus.Subscribe(EventBookingCreated, func(event *Event) error {
		got = append(got, event)
		return nil
	})

	payload := BookingEventPayload{BookingID: 5, ItemID: 1, BookerID: 20, Status: "WAITING"}
	require.NoError(t, bus.PublishJSON(EventBookingCreated, payload))

	require.Len(t, got, 1)
	assert.Equal(t, EventBookingCreated, got[0].Type)
	assert.False(t, got[0].CreatedAt.IsZero())

	var decoded BookingEventPayload
	require.NoError(t, json.Unmarshal(got[0].Payload, &decoded))
	assert.Equal(t, int64(5), decoded.BookingID)
	assert.Equal(t, int64(20), decoded.BookerID)
}

func TestEventBusIgnoresOtherTypes(t *testing.T) {
	bus := NewEventBus()

	called := 0
	bus.Subscribe(EventCommentAdded, func(event *Event) error {
		called++
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: 1}))
	assert.Zero(t, called)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	first, second := 0, 0
	bus.Subscribe(EventItemCreated, func(event *Event) error { first++; return nil })
	bus.Subscribe(EventItemCreated, func(event *Event) error { second++; return nil })

	require.NoError(t, bus.PublishJSON(EventItemCreated, map[string]int64{"item_id": 1}))
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestNilBusPublish(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{}))
}
