package server

import (
	"github.com/hashicorp/go-hclog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	adminv1 "login-api/api/admin/v1"
	authv1 "login-api/api/auth/v1"
	protectedv1 "login-api/api/protected/v1"
	adminhandler "login-api/internal/admin/handler"
	healthhandler "login-api/internal/health/handler"
	identityhandler "login-api/internal/identity/handler"
	identityservice "login-api/internal/identity/service"
	"login-api/internal/policy/engine"
	protectedhandler "login-api/internal/protected/handler"
	"login-api/internal/server/interceptors"
)

// Deps holds optional service dependencies for gRPC handlers.
type Deps struct {
	// Auth is the auth service. If nil, auth RPCs return Unimplemented.
	Auth *identityservice.AuthService
	// Authz decides role-gated RPCs. If nil, AdminService returns Unimplemented.
	Authz engine.Authorizer
	// HealthPinger is used by the health service for readiness (e.g. *sql.DB). If nil, Check skips store pings.
	HealthPinger healthhandler.Pinger
	// HealthPolicyChecker is used by the health service for readiness (e.g. the OPA evaluator). If nil, Check skips it.
	HealthPolicyChecker healthhandler.PolicyChecker
	Logger              hclog.Logger
}

// Options configures the server-wide interceptor chain.
type Options struct {
	// Validator authenticates Bearer access tokens. Required.
	Validator interceptors.AccessValidator
	Logger    hclog.Logger
	// Meter records per-RPC metrics. If nil, no RPC metrics are recorded.
	Meter metric.Meter
	// Tracing adds the otelgrpc stats handler (spans and rpc.server metrics from the global providers).
	Tracing bool
}

// PublicMethods are callable without a Bearer token.
var PublicMethods = map[string]bool{
	authv1.AuthService_Register_FullMethodName:       true,
	authv1.AuthService_Login_FullMethodName:          true,
	authv1.AuthService_ChangePassword_FullMethodName: true,
	authv1.AuthService_Refresh_FullMethodName:        true,
	healthpb.Health_Check_FullMethodName:             true,
	healthpb.Health_Watch_FullMethodName:             true,
}

// quietMethods are not logged or measured.
var quietMethods = map[string]bool{
	healthpb.Health_Check_FullMethodName: true,
}

// NewServer returns a gRPC server with the logging, metrics and auth interceptors chained in that order.
func NewServer(opts Options) (*grpc.Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	metrics, err := interceptors.MetricsUnary(opts.Meter, quietMethods)
	if err != nil {
		return nil, err
	}
	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			interceptors.LoggingUnary(logger.Named("rpc"), quietMethods),
			metrics,
			interceptors.AuthUnary(opts.Validator, PublicMethods),
		),
	}
	if opts.Tracing {
		serverOpts = append(serverOpts, grpc.StatsHandler(otelgrpc.NewServerHandler()))
	}
	return grpc.NewServer(serverOpts...), nil
}

// RegisterServices registers all gRPC services with the given server.
//
// Service → handler mapping:
//   - AuthService      → internal/identity/handler
//   - ProtectedService → internal/protected/handler
//   - AdminService     → internal/admin/handler
//   - grpc.health.v1   → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	authv1.RegisterAuthServiceServer(s, identityhandler.NewAuthServer(deps.Auth))
	protectedv1.RegisterProtectedServiceServer(s, protectedhandler.NewServer())
	adminv1.RegisterAdminServiceServer(s, adminhandler.NewServer(deps.Authz))
	healthpb.RegisterHealthServer(s, healthhandler.NewServer(deps.HealthPinger, deps.HealthPolicyChecker, deps.Logger))
}
