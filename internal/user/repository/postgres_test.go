package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"login-api/internal/platform/persistence"
	"login-api/internal/user/domain"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

var userColumns = []string{"id", "username", "email", "name", "password_hash", "security_stamp", "created_at", "updated_at"}

func TestGetByUsername(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery("FROM users").WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u1", "alice", "a@example.com", nil, "hash", "stamp", now, now))
	mock.ExpectQuery("FROM users").WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM users").WithArgs("boom").WillReturnError(errors.New("conn refused"))

	u, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u.ID != "u1" || u.Name != "" || u.PasswordHash != "hash" {
		t.Errorf("unexpected user %+v", u)
	}
	if u, err := repo.GetByUsername(context.Background(), "ghost"); u != nil || err != nil {
		t.Errorf("missing user: want (nil, nil), got (%v, %v)", u, err)
	}
	if _, err := repo.GetByUsername(context.Background(), "boom"); !errors.Is(err, persistence.ErrUnavailable) {
		t.Errorf("db failure: want ErrUnavailable, got %v", err)
	}
}

func TestCreate_DuplicateUsername(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &domain.User{ID: "u1", Username: "alice", Email: "a@example.com", PasswordHash: "h"})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("want ErrDuplicateUsername, got %v", err)
	}
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("u1", "alice", "a@example.com", "Alice", "h", "s", now, now).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u1", "alice", "a@example.com", "Alice", "h", "s", now, now))

	u := &domain.User{ID: "u1", Username: "alice", Email: "a@example.com", Name: "Alice", PasswordHash: "h", SecurityStamp: "s", CreatedAt: now, UpdatedAt: now}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRoles(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ctx := context.Background()
	mock.ExpectQuery("SELECT EXISTS").WithArgs("User").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("INSERT INTO user_roles").WithArgs("u1", "User").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT role_name FROM user_roles").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"role_name"}).AddRow("Admin").AddRow("User"))
	mock.ExpectExec("INSERT INTO roles").WithArgs("Admin", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))

	if ok, err := repo.RoleExists(ctx, "User"); err != nil || !ok {
		t.Fatalf("RoleExists: ok=%v err=%v", ok, err)
	}
	if err := repo.AssignRole(ctx, "u1", "User"); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	roles, err := repo.ListRoles(ctx, "u1")
	if err != nil {
		t.Fatalf("ListRoles: %v", err)
	}
	if len(roles) != 2 || roles[0] != "Admin" || roles[1] != "User" {
		t.Errorf("roles = %v", roles)
	}
	if err := repo.EnsureRole(ctx, "Admin"); err != nil {
		t.Fatalf("EnsureRole: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdatePassword(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec("UPDATE users").WithArgs("u1", "h2", "s2", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users").WithArgs("gone", "h2", "s2", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 0))

	if ok, err := repo.UpdatePassword(context.Background(), "u1", "h2", "s2"); err != nil || !ok {
		t.Fatalf("UpdatePassword: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.UpdatePassword(context.Background(), "gone", "h2", "s2"); err != nil || ok {
		t.Fatalf("UpdatePassword missing: ok=%v err=%v", ok, err)
	}
}
