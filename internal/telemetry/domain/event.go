package domain

import "time"

// EventType names an auth lifecycle event.
type EventType string

const (
	EventRegister        EventType = "register"
	EventLogin           EventType = "login"
	EventLoginFailed     EventType = "login_failed"
	EventPasswordChanged EventType = "password_changed"
	EventRefresh         EventType = "refresh"
	EventRefreshRejected EventType = "refresh_rejected"
	EventRevoke          EventType = "revoke"
)

// AuthEvent is one auth lifecycle event. It never carries passwords or tokens, only the access token jti.
type AuthEvent struct {
	Type       EventType `json:"type"`
	Username   string    `json:"username,omitempty"`
	TokenID    string    `json:"token_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Succeeded reports whether the event records a successful operation.
func (e *AuthEvent) Succeeded() bool {
	return e.Type != EventLoginFailed && e.Type != EventRefreshRejected
}
