package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"login-api/internal/user/domain"
)

// MemoryRepository is an in-process user store for dev mode and tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	byName map[string]*domain.User
	byID   map[string]*domain.User
	roles  map[string]struct{}
	grants map[string][]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byName: make(map[string]*domain.User),
		byID:   make(map[string]*domain.User),
		roles:  make(map[string]struct{}),
		grants: make(map[string][]string),
	}
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byName[username]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *MemoryRepository) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[u.Username]; ok {
		return ErrDuplicateUsername
	}
	c := *u
	r.byName[u.Username] = &c
	r.byID[u.ID] = &c
	return nil
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, id, passwordHash, securityStamp string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	u.PasswordHash = passwordHash
	u.SecurityStamp = securityStamp
	u.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *MemoryRepository) ListRoles(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.grants[userID]), nil
}

func (r *MemoryRepository) AssignRole(ctx context.Context, userID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.Contains(r.grants[userID], role) {
		return nil
	}
	r.grants[userID] = append(r.grants[userID], role)
	slices.Sort(r.grants[userID])
	return nil
}

func (r *MemoryRepository) RoleExists(ctx context.Context, role string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.roles[role]
	return ok, nil
}

func (r *MemoryRepository) EnsureRole(ctx context.Context, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[role] = struct{}{}
	return nil
}
