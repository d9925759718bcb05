// Command migrate applies the embedded schema migrations and exits.
package main

import (
	"context"
	"os"
	"time"

	"medicloud-backend/internal/shared/config"
	"medicloud-backend/internal/shared/storage/db"
	"medicloud-backend/internal/shared/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("config.load", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	database, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		telemetry.Error("db.connect", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, database); err != nil {
		telemetry.Error("db.migrate", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	telemetry.Info("db.migrate.done", nil)
}
