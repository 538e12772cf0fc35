package interceptors

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// MetricsUnary returns a unary server interceptor that counts RPCs and records their latency
// by method and status code. A nil meter falls back to a no-op.
func MetricsUnary(meter metric.Meter, skipMethods map[string]bool) (grpc.UnaryServerInterceptor, error) {
	if meter == nil {
		return func(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
			return handler(ctx, req)
		}, nil
	}
	requests, err := meter.Int64Counter("login.rpc.requests",
		metric.WithDescription("Unary RPCs handled, by method and status code."))
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram("login.rpc.duration",
		metric.WithDescription("Unary RPC latency."), metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if skipMethods[info.FullMethod] {
			return resp, err
		}
		attrs := metric.WithAttributes(
			attribute.String("rpc.method", info.FullMethod),
			attribute.String("rpc.code", status.Code(err).String()),
		)
		requests.Add(ctx, 1, attrs)
		latency.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
		return resp, err
	}, nil
}
