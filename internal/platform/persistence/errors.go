// Package persistence holds the error shared by every storage backend (Postgres, Redis, memory).
package persistence

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks a storage failure the caller may treat as transient.
// Stores wrap backend errors with it and do not retry.
var ErrUnavailable = errors.New("persistence unavailable")

// Wrap annotates err with op and ErrUnavailable. Both err and ErrUnavailable stay visible to errors.Is.
// A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
