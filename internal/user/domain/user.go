package domain

import (
	"errors"
	"strings"
	"time"
)

// User is the account a username/password pair authenticates.
type User struct {
	ID            string
	Username      string
	Email         string
	Name          string // optional display name
	PasswordHash  string
	SecurityStamp string // rotated on every password change
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DisplayName returns Name, falling back to Username when Name is blank.
func (u *User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Username
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return errors.New("username is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}
