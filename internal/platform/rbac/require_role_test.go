package rbac

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"login-api/internal/policy/engine"
	"login-api/internal/security"
	"login-api/internal/server/interceptors"
)

const adminMethod = "/login.admin.v1.AdminService/GetData"

type failingAuthorizer struct{}

func (failingAuthorizer) Allow(context.Context, string, []string) (bool, error) {
	return false, errors.New("opa down")
}

func TestRequireRole(t *testing.T) {
	authz, err := engine.NewRoleEvaluator(context.Background(), "")
	if err != nil {
		t.Fatalf("NewRoleEvaluator: %v", err)
	}
	tests := []struct {
		name     string
		ctx      context.Context
		authz    engine.Authorizer
		wantCode codes.Code
		wantUser string
	}{
		{
			name:     "admin allowed",
			ctx:      interceptors.WithIdentity(context.Background(), security.NewClaims("root", []string{"Admin"})),
			authz:    authz,
			wantCode: codes.OK,
			wantUser: "root",
		},
		{
			name:     "user denied",
			ctx:      interceptors.WithIdentity(context.Background(), security.NewClaims("alice", []string{"User"})),
			authz:    authz,
			wantCode: codes.PermissionDenied,
		},
		{
			name:     "unauthenticated",
			ctx:      context.Background(),
			authz:    authz,
			wantCode: codes.Unauthenticated,
		},
		{
			name:     "policy error",
			ctx:      interceptors.WithIdentity(context.Background(), security.NewClaims("root", []string{"Admin"})),
			authz:    failingAuthorizer{},
			wantCode: codes.Internal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			username, err := RequireRole(tt.ctx, tt.authz, adminMethod)
			if got := status.Code(err); got != tt.wantCode {
				t.Fatalf("code = %v, want %v (err %v)", got, tt.wantCode, err)
			}
			if username != tt.wantUser {
				t.Errorf("username = %q, want %q", username, tt.wantUser)
			}
		})
	}
}
