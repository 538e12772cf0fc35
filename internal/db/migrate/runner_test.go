package migrate

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"login-api/internal/db"
)

func TestRun_EmptyDSN(t *testing.T) {
	for _, dsn := range []string{"", "   "} {
		err := Run(dsn, Up, nil)
		if err == nil {
			t.Fatalf("Run with DSN %q should return error", dsn)
		}
		if !strings.Contains(err.Error(), "DATABASE_URL is not set") {
			t.Errorf("error = %q, should mention DATABASE_URL", err.Error())
		}
	}
}

func TestParseDirection(t *testing.T) {
	for _, ok := range []string{"up", "down"} {
		if _, err := ParseDirection(ok); err != nil {
			t.Errorf("ParseDirection(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "invalid", "UP", "Up", "both"} {
		if _, err := ParseDirection(bad); err == nil {
			t.Errorf("ParseDirection(%q) should fail", bad)
		}
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	err := Run("postgres://localhost/test", Direction("sideways"), nil)
	if err == nil || !strings.Contains(err.Error(), "direction") {
		t.Errorf("Run with invalid direction: got %v", err)
	}
}

func TestRun_InvalidDSN(t *testing.T) {
	for _, dsn := range []string{"invalid-dsn", "://localhost/test", "postgres://localhost with spaces/test"} {
		err := Run(dsn, Up, nil)
		if err == nil {
			t.Errorf("Run with invalid DSN %q should return error", dsn)
		}
		if errors.Is(err, ErrNoChange) {
			t.Error("Run must not surface ErrNoChange")
		}
	}
}

func TestMigrationFS_PairsUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(db.MigrationFS, "migrations")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Errorf("migrations: %d up, %d down; want matching non-zero counts", ups, downs)
	}
}
