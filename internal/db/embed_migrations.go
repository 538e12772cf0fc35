package db

import "embed"

// MigrationFS embeds the SQL migrations in internal/db/migrations for the migrate runner
// (cmd/migrate, and cmd/server when MIGRATE_ON_START is set).
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
