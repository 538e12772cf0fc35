package repository

import (
	"context"
	"errors"

	"login-api/internal/user/domain"
)

// ErrDuplicateUsername is returned by Create when the username is already registered.
var ErrDuplicateUsername = errors.New("username already exists")

// Repository defines persistence for users and their roles.
type Repository interface {
	// GetByUsername returns the user, or nil if not found.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// UpdatePassword replaces the hash and security stamp. Returns false if no user has id.
	UpdatePassword(ctx context.Context, id, passwordHash, securityStamp string) (bool, error)
	ListRoles(ctx context.Context, userID string) ([]string, error)
	// AssignRole is idempotent.
	AssignRole(ctx context.Context, userID, role string) error
	RoleExists(ctx context.Context, role string) (bool, error)
	// EnsureRole creates the role if missing.
	EnsureRole(ctx context.Context, role string) error
}
