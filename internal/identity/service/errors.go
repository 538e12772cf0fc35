package service

import (
	"errors"

	"login-api/internal/platform/persistence"
)

// Sentinel errors for auth service; handler maps them to gRPC codes.
var (
	// ErrValidation marks malformed input. Wrapped errors carry the field detail.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials never says whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidClientRequest is the single answer for every failed refresh precondition.
	ErrInvalidClientRequest = errors.New("invalid client request")
	ErrNoSession            = errors.New("no session to revoke")
	// ErrConcurrentRefreshConflict is returned in strict rotation mode when another refresh won the race.
	ErrConcurrentRefreshConflict = errors.New("concurrent refresh conflict")
	ErrUsernameTaken             = errors.New("invalid username")
	// ErrPersistenceUnavailable is the storage failure every repository wraps its errors with.
	ErrPersistenceUnavailable = persistence.ErrUnavailable
)
