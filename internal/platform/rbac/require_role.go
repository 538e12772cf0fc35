package rbac

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"login-api/internal/policy/engine"
	"login-api/internal/server/interceptors"
)

// RequireRole ensures the caller is authenticated and that the policy allows its roles to call method.
// Returns the caller's username on success; returns a gRPC error (Unauthenticated, PermissionDenied
// or Internal) on failure.
func RequireRole(ctx context.Context, authz engine.Authorizer, method string) (string, error) {
	username, ok := interceptors.GetUsername(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "authentication required")
	}
	allowed, err := authz.Allow(ctx, method, interceptors.GetRoles(ctx))
	if err != nil {
		return "", status.Error(codes.Internal, "failed to evaluate access policy")
	}
	if !allowed {
		return "", status.Error(codes.PermissionDenied, "insufficient role")
	}
	return username, nil
}
