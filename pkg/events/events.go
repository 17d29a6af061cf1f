package events

import (
	"encoding/json"
	"time"
)

const (
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"
	ConsultationCreated  = "consultation.created"
)

// Event is a lifecycle notification published after a successful mutation.
// Publishing is fire-and-forget: a failed publish is logged and never rolls
// back or fails the originating request.
type Event struct {
	Type       string    `json:"type"`
	EntityID   string    `json:"entityId"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

func New(eventType, entityID string, payload any) Event {
	return Event{
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
