package services

import "time"

// User lifecycle event types.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// EventPublisher delivers serialized user events to a broker.
type EventPublisher interface {
	PublishUserEvent(eventType string, body []byte) error
}

// UserEvent is the JSON payload published for every user mutation.
// It never carries the password hash.
type UserEvent struct {
	ID         string    `json:"event_id"`
	Type       string    `json:"type"`
	UserID     uint      `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
