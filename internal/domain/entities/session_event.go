package entities

import (
	"time"

	"github.com/google/uuid"
)

// SessionEventType represents the type of session change
type SessionEventType string

const (
	SessionEventSignedIn    SessionEventType = "signed_in"
	SessionEventSignedOut   SessionEventType = "signed_out"
	SessionEventRoleChanged SessionEventType = "role_changed"
)

// SessionEvent is broadcast whenever a user's session or role changes
type SessionEvent struct {
	ID        string           `json:"id"`
	Type      SessionEventType `json:"type"`
	UserID    string           `json:"user_id"`
	IsAdmin   bool             `json:"is_admin"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewSessionEvent creates a new session event
func NewSessionEvent(eventType SessionEventType, userID string, isAdmin bool) *SessionEvent {
	return &SessionEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		IsAdmin:   isAdmin,
		Timestamp: time.Now(),
	}
}
