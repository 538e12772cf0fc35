package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"login-api/internal/db/sqlc/gen"
	"login-api/internal/platform/persistence"
	"login-api/internal/user/domain"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// GetByUsername returns the user with the given username, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := r.queries.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, persistence.Wrap("user get", err)
	}
	return genUserToDomain(&u), nil
}

// Create persists the user. The user must have ID set; it is not assigned by this method.
// A unique violation on username is reported as ErrDuplicateUsername.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.queries.CreateUser(ctx, gen.CreateUserParams{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Name:          sql.NullString{String: u.Name, Valid: u.Name != ""},
		PasswordHash:  u.PasswordHash,
		SecurityStamp: u.SecurityStamp,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateUsername
		}
		return persistence.Wrap("user create", err)
	}
	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash, securityStamp string) (bool, error) {
	n, err := r.queries.UpdateUserPassword(ctx, gen.UpdateUserPasswordParams{
		ID:            id,
		PasswordHash:  passwordHash,
		SecurityStamp: securityStamp,
		UpdatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return false, persistence.Wrap("user update password", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) ListRoles(ctx context.Context, userID string) ([]string, error) {
	roles, err := r.queries.ListUserRoles(ctx, userID)
	if err != nil {
		return nil, persistence.Wrap("user list roles", err)
	}
	return roles, nil
}

func (r *PostgresRepository) AssignRole(ctx context.Context, userID, role string) error {
	err := r.queries.AssignUserRole(ctx, gen.AssignUserRoleParams{UserID: userID, RoleName: role})
	return persistence.Wrap("user assign role", err)
}

func (r *PostgresRepository) RoleExists(ctx context.Context, role string) (bool, error) {
	ok, err := r.queries.RoleExists(ctx, role)
	if err != nil {
		return false, persistence.Wrap("role exists", err)
	}
	return ok, nil
}

func (r *PostgresRepository) EnsureRole(ctx context.Context, role string) error {
	err := r.queries.EnsureRole(ctx, gen.EnsureRoleParams{Name: role, CreatedAt: time.Now().UTC()})
	return persistence.Wrap("role ensure", err)
}

func genUserToDomain(u *gen.User) *domain.User {
	if u == nil {
		return nil
	}
	name := ""
	if u.Name.Valid {
		name = u.Name.String
	}
	return &domain.User{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Name:          name,
		PasswordHash:  u.PasswordHash,
		SecurityStamp: u.SecurityStamp,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
