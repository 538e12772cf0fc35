// seed creates the admin account (role Admin) and the built-in roles. Idempotent: an existing
// admin user is left untouched apart from making sure it holds the Admin role.
// Set ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD (ADMIN_NAME optional).
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"

	"login-api/internal/config"
	"login-api/internal/db"
	"login-api/internal/logging"
	"login-api/internal/security"
	"login-api/internal/user"
	userrepo "login-api/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("seed", "info", false).Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.New("seed", cfg.LogLevel, cfg.JSONLogs())
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is not set; create a .env or set DATABASE_URL")
		os.Exit(1)
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logger.Error("ADMIN_EMAIL and ADMIN_PASSWORD are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout()+30*time.Second)
	defer cancel()

	conn, err := db.OpenWithRetry(ctx, cfg.DatabaseURL, cfg.ConnectTimeout(), logger)
	if err != nil {
		logger.Error("db open", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	creds := user.NewCredentialStore(userrepo.NewPostgresRepository(conn), security.NewHasher(cfg.BcryptCost))
	if err := seedAdmin(ctx, creds, cfg, logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func seedAdmin(ctx context.Context, creds *user.CredentialStore, cfg *config.Config, logger hclog.Logger) error {
	for _, role := range []string{security.RoleAdmin, security.RoleUser} {
		if err := creds.EnsureRoleExists(ctx, role); err != nil {
			return err
		}
	}
	u, err := creds.CreateUser(ctx, user.NewUser{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Name:     cfg.AdminName,
		Password: cfg.AdminPassword,
	})
	switch {
	case errors.Is(err, user.ErrUsernameTaken):
		logger.Info("admin user already exists", "username", cfg.AdminUsername)
		u, err = creds.FindByUsername(ctx, cfg.AdminUsername)
		if err != nil {
			return err
		}
		if u == nil {
			return errors.New("admin user vanished during seed")
		}
	case err != nil:
		return err
	default:
		logger.Info("admin user created", "username", u.Username)
	}
	roles, err := creds.GetRoles(ctx, u)
	if err != nil {
		return err
	}
	for _, r := range roles {
		if r == security.RoleAdmin {
			return nil
		}
	}
	if err := creds.AssignRole(ctx, u, security.RoleAdmin); err != nil {
		return err
	}
	logger.Info("admin role assigned", "username", u.Username)
	return nil
}

