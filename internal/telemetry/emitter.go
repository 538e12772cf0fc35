package telemetry

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"login-api/internal/telemetry/domain"
)

// EventEmitter emits auth events (e.g. to OTel Logs or Kafka). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.AuthEvent) error
}

// FanOut returns an emitter that sends each event to every non-nil emitter.
// All emitters are tried; their errors are combined.
func FanOut(emitters ...EventEmitter) EventEmitter {
	var out fanOut
	for _, e := range emitters {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

type fanOut []EventEmitter

func (f fanOut) Emit(ctx context.Context, event *domain.AuthEvent) error {
	var result *multierror.Error
	for _, e := range f {
		if err := e.Emit(ctx, event); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
