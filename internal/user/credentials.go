// Package user owns accounts, their password hashes and their role grants.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"login-api/internal/security"
	"login-api/internal/user/domain"
	"login-api/internal/user/repository"
)

// MinPasswordLength is the shortest password accepted for new or changed passwords.
const MinPasswordLength = 4

// MaxPasswordLength is bcrypt's input limit in bytes.
const MaxPasswordLength = 72

var (
	// ErrUsernameTaken is returned by CreateUser when the username is registered.
	ErrUsernameTaken = repository.ErrDuplicateUsername
	// ErrWeakPassword is returned when a password fails the password policy.
	ErrWeakPassword = errors.New("password does not meet policy")
)

// NewUser is the input to CreateUser.
type NewUser struct {
	Username string
	Email    string
	Name     string
	Password string
}

// CredentialStore verifies and manages user credentials on top of a Repository.
type CredentialStore struct {
	repo   repository.Repository
	hasher *security.Hasher
}

// NewCredentialStore returns a CredentialStore backed by repo, hashing with hasher.
func NewCredentialStore(repo repository.Repository, hasher *security.Hasher) *CredentialStore {
	if hasher == nil {
		hasher = security.NewHasher(0)
	}
	return &CredentialStore{repo: repo, hasher: hasher}
}

// FindByUsername returns the user or nil when none exists.
func (s *CredentialStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// VerifyPassword reports whether password matches the stored hash of u.
func (s *CredentialStore) VerifyPassword(u *domain.User, password string) (bool, error) {
	if u == nil || u.PasswordHash == "" {
		return false, nil
	}
	return s.hasher.Verify(u.PasswordHash, password)
}

// ChangePassword replaces the password of u when current matches.
// It returns false without writing anything when current is wrong.
func (s *CredentialStore) ChangePassword(ctx context.Context, u *domain.User, current, next string) (bool, error) {
	ok, err := s.VerifyPassword(u, current)
	if err != nil || !ok {
		return false, err
	}
	if err := ValidatePassword(next); err != nil {
		return false, err
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return false, err
	}
	updated, err := s.repo.UpdatePassword(ctx, u.ID, hash, uuid.NewString())
	if err != nil {
		return false, err
	}
	if !updated {
		return false, fmt.Errorf("user %s vanished during password change", u.ID)
	}
	u.PasswordHash = hash
	return true, nil
}

// CreateUser hashes the password and persists a new user with a fresh ID and security stamp.
func (s *CredentialStore) CreateUser(ctx context.Context, in NewUser) (*domain.User, error) {
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		ID:            uuid.NewString(),
		Username:      strings.TrimSpace(in.Username),
		Email:         strings.TrimSpace(in.Email),
		Name:          strings.TrimSpace(in.Name),
		PasswordHash:  hash,
		SecurityStamp: uuid.NewString(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetRoles returns the role names granted to u.
func (s *CredentialStore) GetRoles(ctx context.Context, u *domain.User) ([]string, error) {
	return s.repo.ListRoles(ctx, u.ID)
}

// AssignRole grants role to u. The role must exist.
func (s *CredentialStore) AssignRole(ctx context.Context, u *domain.User, role string) error {
	exists, err := s.repo.RoleExists(ctx, role)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("role %q does not exist", role)
	}
	return s.repo.AssignRole(ctx, u.ID, role)
}

// EnsureRoleExists creates role when missing.
func (s *CredentialStore) EnsureRoleExists(ctx context.Context, role string) error {
	exists, err := s.repo.RoleExists(ctx, role)
	if err != nil || exists {
		return err
	}
	return s.repo.EnsureRole(ctx, role)
}

// ValidatePassword enforces the password policy: MinPasswordLength characters up to
// MaxPasswordLength bytes, with an upper case letter, a lower case letter, a digit and a symbol.
func ValidatePassword(p string) error {
	if len(p) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, MinPasswordLength)
	}
	if len(p) > MaxPasswordLength {
		return fmt.Errorf("%w: must be at most %d bytes", ErrWeakPassword, MaxPasswordLength)
	}
	var upper, lower, digit, symbol bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return fmt.Errorf("%w: needs upper and lower case letters, a digit and a symbol", ErrWeakPassword)
	}
	return nil
}
