package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migration commands accepted by RunMigrations.
const (
	MigrateUp      = "up"
	MigrateDown    = "down"
	MigrateStatus  = "status"
	MigrateRedo    = "redo"
	MigrateVersion = "version"
)

// RunMigrations applies a goose command using the embedded SQL files.
func RunMigrations(ctx context.Context, db *sql.DB, command string) error {
	switch command {
	case MigrateUp, MigrateDown, MigrateStatus, MigrateRedo, MigrateVersion:
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}

	migrationCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.RunContext(migrationCtx, command, db, "migrations"); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	return nil
}
