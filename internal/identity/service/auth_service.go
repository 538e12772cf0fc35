package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"login-api/internal/security"
	sessiondomain "login-api/internal/session/domain"
	"login-api/internal/telemetry"
	telemetrydomain "login-api/internal/telemetry/domain"
	"login-api/internal/user"
	userdomain "login-api/internal/user/domain"
)

// DefaultRefreshTTL is the refresh session lifetime used when Options.RefreshTTL is zero.
const DefaultRefreshTTL = 7 * 24 * time.Hour

// AuthResult holds the outcome of Login or Refresh.
type AuthResult struct {
	AccessToken      string
	RefreshToken     string
	ExpiresAt        time.Time // access token expiry
	RefreshExpiresAt time.Time
	Username         string
	DisplayName      string // Login only
	Roles            []string
	TokenID          string
}

// RegisterInput is the account data accepted by Register.
type RegisterInput struct {
	Username string
	Email    string
	Name     string
	Password string
}

// CredentialStore is the identity store the auth service verifies against.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*userdomain.User, error)
	VerifyPassword(u *userdomain.User, password string) (bool, error)
	ChangePassword(ctx context.Context, u *userdomain.User, current, next string) (bool, error)
	CreateUser(ctx context.Context, in user.NewUser) (*userdomain.User, error)
	GetRoles(ctx context.Context, u *userdomain.User) ([]string, error)
	AssignRole(ctx context.Context, u *userdomain.User, role string) error
	EnsureRoleExists(ctx context.Context, role string) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	Get(ctx context.Context, username string) (*sessiondomain.TokenSession, error)
	Upsert(ctx context.Context, username, refreshTokenHash string, expiry time.Time) error
	CompareAndSwap(ctx context.Context, username string, version int64, refreshTokenHash string, expiry time.Time) (bool, error)
	Clear(ctx context.Context, username string) (bool, error)
}

// TokenCodec issues and decodes tokens.
type TokenCodec interface {
	IssueAccessToken(claims security.Claims) (security.AccessToken, error)
	IssueRefreshToken() (string, error)
	DecodeExpired(token string) (security.Claims, error)
}

// Options tunes the auth service. The zero value is valid.
type Options struct {
	RefreshTTL time.Duration
	// StrictRotation rejects the loser of two concurrent refreshes with ErrConcurrentRefreshConflict
	// instead of letting the last write win.
	StrictRotation bool
	// RevokeOnPasswordChange clears the refresh session after a successful password change.
	RevokeOnPasswordChange bool
	Clock                  func() time.Time
	Logger                 hclog.Logger
	Events                 telemetry.EventEmitter
}

// AuthService implements register, login, password change, refresh and revoke.
// It holds no per-request state; all mutable state lives in its stores.
type AuthService struct {
	creds    CredentialStore
	sessions SessionRepo
	codec    TokenCodec

	refreshTTL     time.Duration
	strict         bool
	revokeOnChange bool
	now            func() time.Time
	log            hclog.Logger
	events         telemetry.EventEmitter
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(creds CredentialStore, sessions SessionRepo, codec TokenCodec, opts Options) *AuthService {
	s := &AuthService{
		creds:          creds,
		sessions:       sessions,
		codec:          codec,
		refreshTTL:     opts.RefreshTTL,
		strict:         opts.StrictRotation,
		revokeOnChange: opts.RevokeOnPasswordChange,
		now:            opts.Clock,
		log:            opts.Logger,
		events:         opts.Events,
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = DefaultRefreshTTL
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.log == nil {
		s.log = hclog.NewNullLogger()
	}
	return s
}

// Register creates a user with the default User role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateUsername(in.Username); err != nil {
		return err
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if err := required("password", in.Password); err != nil {
		return err
	}
	existing, err := s.creds.FindByUsername(ctx, in.Username)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if existing != nil {
		return ErrUsernameTaken
	}
	u, err := s.creds.CreateUser(ctx, user.NewUser{
		Username: in.Username,
		Email:    in.Email,
		Name:     in.Name,
		Password: in.Password,
	})
	switch {
	case errors.Is(err, user.ErrUsernameTaken):
		return ErrUsernameTaken
	case errors.Is(err, user.ErrWeakPassword):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case err != nil:
		return fmt.Errorf("register: %w", err)
	}
	if err := s.creds.EnsureRoleExists(ctx, security.RoleUser); err != nil {
		return fmt.Errorf("register: ensure role: %w", err)
	}
	if err := s.creds.AssignRole(ctx, u, security.RoleUser); err != nil {
		return fmt.Errorf("register: assign role: %w", err)
	}
	s.log.Info("user registered", "username", u.Username)
	s.emit(telemetrydomain.EventRegister, u.Username, "", "")
	return nil
}

// Login verifies username/password and starts a new refresh session, overwriting any previous one.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if err := required("username", username); err != nil {
		return nil, err
	}
	if err := required("password", password); err != nil {
		return nil, err
	}
	u, err := s.creds.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if u == nil {
		s.emit(telemetrydomain.EventLoginFailed, username, "", "credentials")
		return nil, ErrInvalidCredentials
	}
	ok, err := s.creds.VerifyPassword(u, password)
	if err != nil {
		return nil, fmt.Errorf("login: verify password: %w", err)
	}
	if !ok {
		s.emit(telemetrydomain.EventLoginFailed, username, "", "credentials")
		return nil, ErrInvalidCredentials
	}
	roles, err := s.creds.GetRoles(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("login: roles: %w", err)
	}

	res, err := s.issuePair(security.NewClaims(u.Username, roles))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.sessions.Upsert(ctx, u.Username, security.HashRefreshToken(res.RefreshToken), res.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	res.DisplayName = u.DisplayName()
	s.log.Debug("login", "username", u.Username, "jti", res.TokenID)
	s.emit(telemetrydomain.EventLogin, u.Username, res.TokenID, "")
	return res, nil
}

// ChangePassword replaces the password of username when current is correct.
// An unknown username and a wrong current password both return ErrInvalidCredentials.
func (s *AuthService) ChangePassword(ctx context.Context, username, current, next string) error {
	username = strings.TrimSpace(username)
	if err := required("username", username); err != nil {
		return err
	}
	if err := required("current password", current); err != nil {
		return err
	}
	if err := required("new password", next); err != nil {
		return err
	}
	u, err := s.creds.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if u == nil {
		return ErrInvalidCredentials
	}
	changed, err := s.creds.ChangePassword(ctx, u, current, next)
	switch {
	case errors.Is(err, user.ErrWeakPassword):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case err != nil:
		return fmt.Errorf("change password: %w", err)
	case !changed:
		return ErrInvalidCredentials
	}
	if s.revokeOnChange {
		if _, err := s.sessions.Clear(ctx, u.Username); err != nil {
			return fmt.Errorf("change password: revoke session: %w", err)
		}
	}
	s.log.Info("password changed", "username", u.Username, "session_revoked", s.revokeOnChange)
	s.emit(telemetrydomain.EventPasswordChanged, u.Username, "", "")
	return nil
}

// Refresh rotates the refresh token of the user named in accessToken, which may be expired.
// The new access token carries the same subject and roles as the old one.
// Every failed precondition returns ErrInvalidClientRequest.
func (s *AuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*AuthResult, error) {
	if accessToken == "" || refreshToken == "" {
		return nil, ErrInvalidClientRequest
	}
	claims, err := s.codec.DecodeExpired(accessToken)
	if err != nil {
		s.log.Debug("refresh rejected", "reason", "access token", "error", err)
		s.emit(telemetrydomain.EventRefreshRejected, "", "", "access token")
		return nil, ErrInvalidClientRequest
	}
	sess, err := s.sessions.Get(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if reason := s.rejectReason(sess, refreshToken); reason != "" {
		s.log.Debug("refresh rejected", "username", claims.Subject, "reason", reason)
		s.emit(telemetrydomain.EventRefreshRejected, claims.Subject, claims.TokenID.String(), reason)
		return nil, ErrInvalidClientRequest
	}

	res, err := s.issuePair(claims)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	hash := security.HashRefreshToken(res.RefreshToken)
	if s.strict {
		swapped, err := s.sessions.CompareAndSwap(ctx, claims.Subject, sess.Version, hash, res.RefreshExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("refresh: %w", err)
		}
		if !swapped {
			s.emit(telemetrydomain.EventRefreshRejected, claims.Subject, claims.TokenID.String(), "conflict")
			return nil, ErrConcurrentRefreshConflict
		}
	} else if err := s.sessions.Upsert(ctx, claims.Subject, hash, res.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	s.emit(telemetrydomain.EventRefresh, claims.Subject, res.TokenID, "")
	return res, nil
}

// Revoke clears the refresh session of username. It returns ErrNoSession when the user never logged in.
func (s *AuthService) Revoke(ctx context.Context, username string) error {
	if err := required("username", username); err != nil {
		return err
	}
	cleared, err := s.sessions.Clear(ctx, username)
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	if !cleared {
		return ErrNoSession
	}
	s.log.Info("session revoked", "username", username)
	s.emit(telemetrydomain.EventRevoke, username, "", "")
	return nil
}

// issuePair signs an access token for claims and mints a refresh token expiring refreshTTL from now.
func (s *AuthService) issuePair(claims security.Claims) (*AuthResult, error) {
	access, err := s.codec.IssueAccessToken(claims)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.IssueRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &AuthResult{
		AccessToken:      access.Token,
		RefreshToken:     refresh,
		ExpiresAt:        access.ExpiresAt,
		RefreshExpiresAt: s.now().Add(s.refreshTTL),
		Username:         access.Claims.Subject,
		Roles:            access.Claims.Roles,
		TokenID:          access.Claims.TokenID.String(),
	}, nil
}

// rejectReason returns why refreshToken cannot rotate sess, or "" if it can.
// The reason is for logs only; callers always answer ErrInvalidClientRequest.
func (s *AuthService) rejectReason(sess *sessiondomain.TokenSession, refreshToken string) string {
	switch sess.State(s.now()) {
	case sessiondomain.StateNoSession:
		return "no session"
	case sessiondomain.StateRevoked:
		return "revoked"
	case sessiondomain.StateExpired:
		return "expired"
	}
	if !security.RefreshTokenMatches(refreshToken, sess.RefreshTokenHash) {
		return "mismatch"
	}
	return ""
}

func (s *AuthService) emit(typ telemetrydomain.EventType, username, tokenID, reason string) {
	if s.events == nil {
		return
	}
	telemetry.EmitAsync(s.events, s.log, &telemetrydomain.AuthEvent{
		Type:       typ,
		Username:   username,
		TokenID:    tokenID,
		Reason:     reason,
		OccurredAt: s.now(),
	})
}
