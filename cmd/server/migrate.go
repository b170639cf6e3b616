package main

import (
	"context"

	"github.com/kamikazebr/todo-otp/internal/server/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Run: func(cmd *cobra.Command, args []string) {
		runMigration("up", storage.MigrateUp)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Run: func(cmd *cobra.Command, args []string) {
		runMigration("down", storage.MigrateDown)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Run: func(cmd *cobra.Command, args []string) {
		runMigration("status", storage.MigrateStatus)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

func runMigration(name string, fn func(ctx context.Context, db *storage.DB) error) {
	cfg, logger := mustLoadConfig()
	defer logger.Sync()

	ctx := context.Background()
	db := mustOpenDB(ctx, cfg, logger)
	defer db.Close()

	if err := fn(ctx, db); err != nil {
		logger.Fatal("migration failed", zap.String("command", name), zap.Error(err))
	}
	logger.Info("migration complete", zap.String("command", name))
}
