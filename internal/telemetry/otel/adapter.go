package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"login-api/internal/telemetry"
	"login-api/internal/telemetry/domain"
)

const instrumentationName = "login-api/auth"

// RecordEmitter is the subset of otellog.Logger the emitter needs.
type RecordEmitter interface {
	Emit(ctx context.Context, record otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends auth events as OTel log records via provider
// and counts them on meter. A nil provider disables records, a nil meter disables the counter;
// both nil yields a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider, meter metric.Meter) (telemetry.EventEmitter, error) {
	if provider == nil && meter == nil {
		return noopEmitter{}, nil
	}
	var logger RecordEmitter
	if provider != nil {
		logger = provider.Logger(instrumentationName)
	}
	return newEmitter(logger, meter)
}

// NewEventEmitterWithLogger returns an emitter that writes records to logger only. Used by tests.
func NewEventEmitterWithLogger(logger RecordEmitter) telemetry.EventEmitter {
	return &otelEmitter{logger: logger}
}

func newEmitter(logger RecordEmitter, meter metric.Meter) (*otelEmitter, error) {
	e := &otelEmitter{logger: logger}
	if meter != nil {
		counter, err := meter.Int64Counter("login.auth.events",
			metric.WithDescription("Auth lifecycle events, by type and outcome."))
		if err != nil {
			return nil, err
		}
		e.events = counter
	}
	return e, nil
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *domain.AuthEvent) error { return nil }

type otelEmitter struct {
	logger RecordEmitter
	events metric.Int64Counter
}

// Emit converts the auth event to an OTel log record and bumps the event counter.
func (e *otelEmitter) Emit(ctx context.Context, event *domain.AuthEvent) error {
	if event == nil {
		return nil
	}
	outcome := "success"
	if !event.Succeeded() {
		outcome = "failure"
	}
	if e.events != nil {
		e.events.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event_type", string(event.Type)),
			attribute.String("outcome", outcome),
		))
	}
	if e.logger == nil {
		return nil
	}

	rec := otellog.Record{}
	ts := event.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	rec.SetTimestamp(ts)
	rec.SetObservedTimestamp(time.Now().UTC())
	rec.SetBody(otellog.StringValue(string(event.Type)))
	if event.Succeeded() {
		rec.SetSeverity(otellog.SeverityInfo)
	} else {
		rec.SetSeverity(otellog.SeverityWarn)
	}
	rec.AddAttributes(
		otellog.String("event_type", string(event.Type)),
		otellog.String("outcome", outcome),
	)
	if event.Username != "" {
		rec.AddAttributes(otellog.String("username", event.Username))
	}
	if event.TokenID != "" {
		rec.AddAttributes(otellog.String("token_id", event.TokenID))
	}
	if event.Reason != "" {
		rec.AddAttributes(otellog.String("reason", event.Reason))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
