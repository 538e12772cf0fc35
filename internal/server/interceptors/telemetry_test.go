package interceptors

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMetricsUnary(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	interceptor, err := MetricsUnary(provider.Meter("test"), map[string]bool{"/skip/Me": true})
	if err != nil {
		t.Fatalf("MetricsUnary: %v", err)
	}
	ok := func(ctx context.Context, req interface{}) (interface{}, error) { return "ok", nil }
	fail := func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.Unauthenticated, "no")
	}
	ctx := context.Background()
	_, _ = interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/a/Login"}, ok)
	_, _ = interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/a/Login"}, fail)
	_, _ = interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/skip/Me"}, ok)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	var total int64
	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "login.rpc.requests" {
				continue
			}
			found = true
			sum, isSum := m.Data.(metricdata.Sum[int64])
			if !isSum {
				t.Fatalf("requests data = %T, want Sum[int64]", m.Data)
			}
			if len(sum.DataPoints) != 2 {
				t.Errorf("want one series per status code, got %d", len(sum.DataPoints))
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	if !found {
		t.Fatal("login.rpc.requests not recorded")
	}
	if total != 2 {
		t.Errorf("requests total = %d, want 2", total)
	}
}

func TestMetricsUnary_NilMeter(t *testing.T) {
	interceptor, err := MetricsUnary(nil, nil)
	if err != nil {
		t.Fatalf("MetricsUnary: %v", err)
	}
	resp, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/a/B"},
		func(ctx context.Context, req interface{}) (interface{}, error) { return "ok", nil })
	if err != nil || resp != "ok" {
		t.Errorf("resp = %v, err = %v", resp, err)
	}
}
