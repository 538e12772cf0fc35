package main

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"login-api/internal/config"
	"login-api/internal/security"
	"login-api/internal/user"
	userrepo "login-api/internal/user/repository"
)

func TestSeedAdmin_Idempotent(t *testing.T) {
	ctx := context.Background()
	creds := user.NewCredentialStore(userrepo.NewMemoryRepository(), security.NewHasher(4))
	cfg := &config.Config{AdminUsername: "admin", AdminEmail: "admin@x.com", AdminName: "Administrator", AdminPassword: "Adm1n!"}

	require.NoError(t, seedAdmin(ctx, creds, cfg, hclog.NewNullLogger()))
	require.NoError(t, seedAdmin(ctx, creds, cfg, hclog.NewNullLogger()))

	u, err := creds.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, "Administrator", u.DisplayName())
	roles, err := creds.GetRoles(ctx, u)
	require.NoError(t, err)
	require.Equal(t, []string{security.RoleAdmin}, roles)

	ok, err := creds.VerifyPassword(u, "Adm1n!")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSeedAdmin_WeakPassword(t *testing.T) {
	creds := user.NewCredentialStore(userrepo.NewMemoryRepository(), security.NewHasher(4))
	cfg := &config.Config{AdminUsername: "admin", AdminEmail: "admin@x.com", AdminPassword: "admin"}
	require.ErrorIs(t, seedAdmin(context.Background(), creds, cfg, hclog.NewNullLogger()), user.ErrWeakPassword)
}
