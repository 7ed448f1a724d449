package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported lifecycle event identifiers.
type EventType string

const (
	EventUserDetained  EventType = "user_detained"
	EventUserReleased  EventType = "user_released"
	EventUserBanned    EventType = "user_banned"
	EventUserDeleted   EventType = "user_deleted"
	EventUserActivated EventType = "user_activated"
)

// Event represents a lifecycle event emitted by a user transition.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    uuid.UUID   `json:"user_id"`
	User      *User       `json:"-"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// UserDetainedPayload payload.
type UserDetainedPayload struct {
	Days int `json:"days"`
}

// UserBannedPayload payload.
type UserBannedPayload struct {
	BannedOn time.Time `json:"banned_on"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	DeletedOn time.Time `json:"deleted_on"`
}

// Publisher is the event-bus capability a transition call is handed.
// The entity never stores it; the caller supplies it per call, which keeps
// the entity persistence-friendly and trivially testable with a stub.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// publish is fire-and-forget from the entity's perspective: delivery,
// ordering and listener failures are the bus implementation's concern.
func publish(ctx context.Context, bus Publisher, event Event) {
	if bus == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = timeNow().UTC()
	}
	_ = bus.Publish(ctx, event)
}
