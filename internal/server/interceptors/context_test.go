package interceptors

import (
	"context"
	"testing"

	"login-api/internal/security"
)

func TestWithIdentity(t *testing.T) {
	claims := security.NewClaims("alice", []string{"User"})
	ctx := WithIdentity(context.Background(), claims)

	username, ok := GetUsername(ctx)
	if !ok || username != "alice" {
		t.Errorf("GetUsername = %q, %v; want alice, true", username, ok)
	}
	if roles := GetRoles(ctx); len(roles) != 1 || roles[0] != "User" {
		t.Errorf("GetRoles = %v, want [User]", roles)
	}
	jti, ok := GetTokenID(ctx)
	if !ok || jti != claims.TokenID.String() {
		t.Errorf("GetTokenID = %q, %v; want %q", jti, ok, claims.TokenID)
	}
	if got, ok := GetClaims(ctx); !ok || got.Subject != "alice" {
		t.Errorf("GetClaims = %+v, %v", got, ok)
	}
}

func TestGetters_Unauthenticated(t *testing.T) {
	ctx := context.Background()
	if _, ok := GetUsername(ctx); ok {
		t.Error("GetUsername should be false without identity")
	}
	if _, ok := GetTokenID(ctx); ok {
		t.Error("GetTokenID should be false without identity")
	}
	if roles := GetRoles(ctx); roles != nil {
		t.Errorf("GetRoles = %v, want nil", roles)
	}
	if _, ok := GetUsername(WithIdentity(ctx, security.Claims{})); ok {
		t.Error("empty subject must not count as authenticated")
	}
}
