package events

import (
	"time"

	"github.com/spec-kit/coop-scheduler/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserLoggedIn   EventType = "user_logged_in"
	EventLoginFailed    EventType = "login_failed"
	EventSessionRenewed EventType = "session_renewed"
	EventUserLoggedOut  EventType = "user_logged_out"
	EventProfileUpdated EventType = "profile_updated"
)

// Event represents a security-relevant occurrence emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// SessionRenewedPayload payload.
type SessionRenewedPayload struct {
	AccessTokenID string `json:"access_token_id"`
}

// UserLoggedOutPayload payload.
type UserLoggedOutPayload struct {
	Revoked bool `json:"revoked"`
}

// ProfileUpdatedPayload lists the changed fields, never their values.
type ProfileUpdatedPayload struct {
	Fields []string `json:"fields"`
}
