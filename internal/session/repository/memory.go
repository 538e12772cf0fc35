package repository

import (
	"context"
	"sync"
	"time"

	"login-api/internal/session/domain"
)

// MemoryRepository keeps sessions in process memory. Used when SESSION_STORE=memory and in tests.
// It has no backend to lose, so a done context is returned as ctx.Err() unwrapped rather than
// as persistence.ErrUnavailable; callers map context errors on their own.
type MemoryRepository struct {
	mu   sync.Mutex
	m    map[string]*domain.TokenSession
	nowF func() time.Time
}

// NewMemoryRepository returns an empty in-memory session repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		m:    make(map[string]*domain.TokenSession),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Get returns a copy of the stored session, or nil.
func (r *MemoryRepository) Get(ctx context.Context, username string) (*domain.TokenSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[username]
	if !ok {
		return nil, nil
	}
	return cloneSession(s), nil
}

// Upsert creates or overwrites the session under the lock.
func (r *MemoryRepository) Upsert(ctx context.Context, username, refreshTokenHash string, expiry time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.write(username, refreshTokenHash, expiry)
	return nil
}

// CompareAndSwap writes only if the stored version equals version.
func (r *MemoryRepository) CompareAndSwap(ctx context.Context, username string, version int64, refreshTokenHash string, expiry time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[username]
	if !ok || s.Version != version {
		return false, nil
	}
	r.write(username, refreshTokenHash, expiry)
	return true, nil
}

// Clear nulls the refresh fields of an existing session.
func (r *MemoryRepository) Clear(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[username]
	if !ok {
		return false, nil
	}
	s.RefreshTokenHash = ""
	s.RefreshTokenExpiry = nil
	s.Version++
	s.UpdatedAt = r.nowF()
	return true, nil
}

// Len returns the number of session records.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}

// write must be called with r.mu held.
func (r *MemoryRepository) write(username, refreshTokenHash string, expiry time.Time) {
	now := r.nowF()
	exp := expiry.UTC()
	s, ok := r.m[username]
	if !ok {
		s = &domain.TokenSession{Username: username, CreatedAt: now}
		r.m[username] = s
	}
	s.RefreshTokenHash = refreshTokenHash
	s.RefreshTokenExpiry = &exp
	s.Version++
	s.UpdatedAt = now
}

func cloneSession(s *domain.TokenSession) *domain.TokenSession {
	c := *s
	if s.RefreshTokenExpiry != nil {
		t := *s.RefreshTokenExpiry
		c.RefreshTokenExpiry = &t
	}
	return &c
}
