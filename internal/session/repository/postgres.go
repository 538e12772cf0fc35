package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"login-api/internal/db/sqlc/gen"
	"login-api/internal/platform/persistence"
	"login-api/internal/session/domain"
)

// PostgresRepository stores token sessions in the token_sessions table.
type PostgresRepository struct {
	queries *gen.Queries
	now     func() time.Time
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db), now: func() time.Time { return time.Now().UTC() }}
}

// Get returns the session for username, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) Get(ctx context.Context, username string) (*domain.TokenSession, error) {
	s, err := r.queries.GetTokenSession(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, persistence.Wrap("token session get", err)
	}
	return genSessionToDomain(&s), nil
}

// Upsert is a single INSERT ... ON CONFLICT statement, so hash and expiry land together.
func (r *PostgresRepository) Upsert(ctx context.Context, username, refreshTokenHash string, expiry time.Time) error {
	err := r.queries.UpsertTokenSession(ctx, gen.UpsertTokenSessionParams{
		Username:           username,
		RefreshTokenHash:   sql.NullString{String: refreshTokenHash, Valid: refreshTokenHash != ""},
		RefreshTokenExpiry: sql.NullTime{Time: expiry.UTC(), Valid: true},
		UpdatedAt:          r.now(),
	})
	return persistence.Wrap("token session upsert", err)
}

// CompareAndSwap updates the row only while its version is unchanged.
func (r *PostgresRepository) CompareAndSwap(ctx context.Context, username string, version int64, refreshTokenHash string, expiry time.Time) (bool, error) {
	n, err := r.queries.RotateTokenSession(ctx, gen.RotateTokenSessionParams{
		Username:           username,
		Version:            version,
		RefreshTokenHash:   sql.NullString{String: refreshTokenHash, Valid: refreshTokenHash != ""},
		RefreshTokenExpiry: sql.NullTime{Time: expiry.UTC(), Valid: true},
		UpdatedAt:          r.now(),
	})
	if err != nil {
		return false, persistence.Wrap("token session rotate", err)
	}
	return n == 1, nil
}

// Clear nulls the refresh columns for username.
func (r *PostgresRepository) Clear(ctx context.Context, username string) (bool, error) {
	n, err := r.queries.ClearTokenSession(ctx, gen.ClearTokenSessionParams{Username: username, UpdatedAt: r.now()})
	if err != nil {
		return false, persistence.Wrap("token session clear", err)
	}
	return n > 0, nil
}

func genSessionToDomain(s *gen.TokenSession) *domain.TokenSession {
	if s == nil {
		return nil
	}
	out := &domain.TokenSession{
		Username:  s.Username,
		Version:   s.Version,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.RefreshTokenHash.Valid {
		out.RefreshTokenHash = s.RefreshTokenHash.String
	}
	if s.RefreshTokenExpiry.Valid {
		t := s.RefreshTokenExpiry.Time
		out.RefreshTokenExpiry = &t
	}
	return out
}
