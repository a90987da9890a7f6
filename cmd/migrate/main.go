package main

// Run database migrations:
//   go run ./cmd/migrate            # apply pending
//   go run ./cmd/migrate status
//   go run ./cmd/migrate down       # roll back the latest

import (
	"context"
	"os"

	"github.com/spf13/pflag"

	"resume-uploads/internal/shared/config"
	"resume-uploads/internal/shared/storage/db"
	"resume-uploads/internal/shared/telemetry"
)

func main() {
	envFile := pflag.String("env-file", "", "load variables from this file before reading config")
	pflag.Parse()

	if *envFile != "" {
		if err := config.LoadEnvFile(*envFile); err != nil {
			fail("migrate.env_file_failed", err)
		}
	}

	cfg := config.Load()
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		fail("migrate.connect_failed", err)
	}
	defer sqlDB.Close()

	command := "up"
	if pflag.NArg() > 0 {
		command = pflag.Arg(0)
	}

	switch command {
	case "up":
		err = db.RunMigrations(ctx, sqlDB)
	case "down":
		err = db.RollbackMigration(ctx, sqlDB)
	case "status":
		err = db.MigrationStatus(ctx, sqlDB)
	default:
		telemetry.Error("migrate.unknown_command", map[string]any{"command": command})
		os.Exit(2)
	}
	if err != nil {
		sqlDB.Close()
		fail("migrate."+command+"_failed", err)
	}
	telemetry.Info("migrate.done", map[string]any{"command": command})
}

func fail(msg string, err error) {
	telemetry.Error(msg, map[string]any{"error": err.Error()})
	os.Exit(1)
}
