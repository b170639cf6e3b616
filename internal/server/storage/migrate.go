package storage

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

func setupGoose() error {
	goose.SetBaseFS(migrationsFS)
	return goose.SetDialect("postgres")
}

// MigrateUp applies all pending migrations.
func MigrateUp(ctx context.Context, db *DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.DB.DB, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, db *DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db.DB.DB, migrationsDir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// MigrateStatus logs the applied state of every migration.
func MigrateStatus(ctx context.Context, db *DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db.DB.DB, migrationsDir)
}
