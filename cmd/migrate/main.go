// migrate applies the embedded SQL migrations; go run ./cmd/migrate [-direction up|down].
package main

import (
	"flag"
	"os"

	"login-api/internal/config"
	"login-api/internal/db/migrate"
	"login-api/internal/logging"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.New("migrate", "info", false).Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.New("migrate", cfg.LogLevel, cfg.JSONLogs())

	dir, err := migrate.ParseDirection(*direction)
	if err != nil {
		logger.Error("invalid flag", "error", err)
		os.Exit(2)
	}
	if err := migrate.Run(cfg.DatabaseURL, dir, logger); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
	version, dirty, err := migrate.Version(cfg.DatabaseURL)
	if err != nil {
		logger.Warn("could not read schema version", "error", err)
		return
	}
	logger.Info("schema ready", "version", version, "dirty", dirty)
}
