// Package db opens the Postgres pool used by the user and token-session repositories.
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a Postgres connection using the given DSN and pings it once. Caller must call Close when done.
func Open(dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("db: empty DSN")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenWithRetry calls Open with exponential backoff until it succeeds, ctx ends, or maxWait elapses.
// Used only at process startup while the database container may still be coming up; request paths never retry.
func OpenWithRetry(ctx context.Context, dsn string, maxWait time.Duration, logger hclog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = maxWait

	var conn *sql.DB
	op := func() error {
		c, err := Open(dsn)
		if err != nil {
			if strings.TrimSpace(dsn) == "" {
				return backoff.Permanent(err)
			}
			return err
		}
		conn = c
		return nil
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("database not ready, retrying", "error", err, "retry_in", next)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}
	return conn, nil
}
