package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewEventBus()

	var got []*Event
	bus.Subscribe(EventAppointmentCreated, func(e *Event) error {
		got = append(got, e)
		return nil
	})
	bus.Subscribe(EventAppointmentCancelled, func(e *Event) error {
		t.Fatal("wrong subscriber invoked")
		return nil
	})

	bus.Publish(&Event{Type: EventAppointmentCreated, Payload: []byte("x")})

	require.Len(t, got, 1)
	assert.Equal(t, EventAppointmentCreated, got[0].Type)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestEventBusMultipleHandlers(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	for i := 0; i < 3; i++ {
		bus.Subscribe(EventReminderSent, func(e *Event) error {
			calls++
			return nil
		})
	}

	bus.Publish(&Event{Type: EventReminderSent})
	assert.Equal(t, 3, calls)
}

func TestPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var got *Event
	bus.Subscribe(EventAppointmentConfirmed, func(e *Event) error {
		got = e
		return nil
	})

	payload := AppointmentEventPayload{
		AppointmentID: 7,
		CustomerID:    3,
		StartTime:     time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Status:        "Confirmed",
	}
	require.NoError(t, bus.PublishJSON(EventAppointmentConfirmed, payload))

	require.NotNil(t, got)
	var decoded AppointmentEventPayload
	require.NoError(t, json.Unmarshal(got.Payload, &decoded))
	assert.Equal(t, payload.AppointmentID, decoded.AppointmentID)
	assert.True(t, payload.StartTime.Equal(decoded.StartTime))
}

func TestPublishJSONNilBus(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventAppointmentDeleted, nil))
}
