package persistence

import (
	"context"
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	if Wrap("op", nil) != nil {
		t.Fatal("Wrap(nil) should be nil")
	}
	err := Wrap("session get", context.DeadlineExceeded)
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should match ErrUnavailable")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("wrapped error should keep its cause")
	}
	if got, want := err.Error(), "session get: persistence unavailable: context deadline exceeded"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
