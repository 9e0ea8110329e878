package amqp

import (
	"encoding/json"
	"time"

	"timebudget/internal/core"
)

// EventMessage is the wire form of a core.Event. Consumers reload state from
// the store, so the message only identifies what changed.
type EventMessage struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	EntityID   string    `json:"entity_id"`
	WeekStart  time.Time `json:"week_start"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEventMessage(e core.Event) *EventMessage {
	occurred := e.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return &EventMessage{
		Type:       string(e.Type),
		UserID:     e.UserID,
		EntityID:   e.EntityID,
		WeekStart:  e.WeekStart,
		OccurredAt: occurred,
	}
}

func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *EventMessage) ToEvent() core.Event {
	return core.Event{
		Type:       core.EventType(m.Type),
		UserID:     m.UserID,
		EntityID:   m.EntityID,
		WeekStart:  m.WeekStart,
		OccurredAt: m.OccurredAt,
	}
}

func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
