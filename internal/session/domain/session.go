package domain

import "time"

// TokenSession binds a username to its single current refresh token.
// Revocation clears RefreshTokenHash and RefreshTokenExpiry; the record itself is kept.
type TokenSession struct {
	Username           string
	RefreshTokenHash   string     // SHA-256 hex of the refresh token; empty once revoked
	RefreshTokenExpiry *time.Time // nil once revoked
	Version            int64      // bumped on every write; used for optimistic rotation
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// State is the refresh lifecycle position of a user. It is derived, never stored.
type State string

const (
	StateNoSession State = "no_session"
	StateActive    State = "active"
	StateExpired   State = "expired"
	StateRevoked   State = "revoked"
)

// State reports the lifecycle state at now. A nil session is StateNoSession.
// A session expiring exactly at now is already expired.
func (s *TokenSession) State(now time.Time) State {
	switch {
	case s == nil:
		return StateNoSession
	case s.RefreshTokenHash == "" || s.RefreshTokenExpiry == nil:
		return StateRevoked
	case !s.RefreshTokenExpiry.After(now):
		return StateExpired
	default:
		return StateActive
	}
}
