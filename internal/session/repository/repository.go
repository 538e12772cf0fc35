package repository

import (
	"context"
	"time"

	"login-api/internal/session/domain"
)

// Repository persists one token session per username.
// Backend failures are returned wrapped with persistence.ErrUnavailable; nothing here retries.
type Repository interface {
	// Get returns the session for username, or nil if none exists.
	Get(ctx context.Context, username string) (*domain.TokenSession, error)
	// Upsert creates the session or overwrites its refresh hash and expiry in one atomic write.
	// Concurrent writers for the same username resolve last-writer-wins; a torn hash/expiry pair is never visible.
	Upsert(ctx context.Context, username, refreshTokenHash string, expiry time.Time) error
	// CompareAndSwap overwrites the refresh hash and expiry only if the stored version still equals version.
	// It returns false when another write got there first or the session does not exist.
	CompareAndSwap(ctx context.Context, username string, version int64, refreshTokenHash string, expiry time.Time) (bool, error)
	// Clear nulls the refresh hash and expiry, keeping the record. It returns false if no session exists.
	Clear(ctx context.Context, username string) (bool, error)
}
