package interceptors

import (
	"context"

	"login-api/internal/security"
)

type contextKey struct{ name string }

var claimsKey = contextKey{"claims"}

// WithIdentity returns a context carrying the authenticated caller's claims.
// Handlers read them via GetUsername, GetRoles, GetTokenID or GetClaims.
func WithIdentity(ctx context.Context, claims security.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims returns the caller's claims and true if the request was authenticated.
func GetClaims(ctx context.Context) (security.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(security.Claims)
	return c, ok
}

// GetUsername returns the authenticated username and true if set; otherwise "", false.
func GetUsername(ctx context.Context) (string, bool) {
	c, ok := GetClaims(ctx)
	if !ok || c.Subject == "" {
		return "", false
	}
	return c.Subject, true
}

// GetRoles returns the caller's roles, or nil when unauthenticated.
func GetRoles(ctx context.Context) []string {
	c, _ := GetClaims(ctx)
	return c.Roles
}

// GetTokenID returns the jti of the access token that authenticated the request.
func GetTokenID(ctx context.Context) (string, bool) {
	c, ok := GetClaims(ctx)
	if !ok {
		return "", false
	}
	return c.TokenID.String(), true
}
