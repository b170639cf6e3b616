package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamikazebr/todo-otp/internal/server/api"
	"github.com/kamikazebr/todo-otp/internal/server/services"
	"github.com/kamikazebr/todo-otp/internal/server/storage"
	"github.com/kamikazebr/todo-otp/pkg/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "todo-otp-server"

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Todo server with email one-time-code sign-in",
	Long:  "HTTP API for a personal todo list. Users sign in with a six-digit code sent to their email.",
	// Default to serve command if no subcommand provided
	Run: func(cmd *cobra.Command, args []string) {
		runServe(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Run:   runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			fmt.Println(version.GetVersionInfo())
			return
		}
		fmt.Println(version.GetVersion(serviceName))
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "Show detailed build information")
	serveCmd.Flags().Bool("skip-migrations", false, "Do not apply database migrations on startup")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd, migrateCmd, adminCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, logger := mustLoadConfig()
	defer logger.Sync()

	if err := cfg.RequireServe(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	logger.Info("starting", zap.String("version", version.GetVersion(serviceName)), zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := mustOpenDB(ctx, cfg, logger)
	defer db.Close()

	skipMigrations, _ := cmd.Flags().GetBool("skip-migrations")
	if !skipMigrations {
		logger.Info("running database migrations")
		if err := storage.MigrateUp(ctx, db); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	authStore := storage.NewAuthStore(db)

	var (
		broadcaster *services.Broadcaster
		devInbox    *services.DevInbox
	)
	if cfg.IsDevelopment() {
		broadcaster = services.NewBroadcaster(cfg.DevStreamMaxAge, logger)
		devInbox = services.NewDevInbox(storage.NewDevMessageRepository(db), broadcaster, logger)
		go broadcaster.Run(ctx, time.Minute)
	}

	mailer, err := newMailer(ctx, cfg, devInbox, logger)
	if err != nil {
		logger.Fatal("failed to initialize mailer", zap.Error(err))
	}

	authService := services.NewAuthService(authStore, mailer, authConfig(cfg), logger)
	userService := services.NewUserService(authStore.Users())
	todoService := services.NewTodoService(storage.NewTodoRepository(db), logger)

	deps := api.RouterDeps{
		Auth:      authService,
		Profiles:  userService,
		Todos:     todoService,
		DevRoutes: cfg.IsDevelopment(),
		Logger:    logger,
	}
	if devInbox != nil {
		deps.DevInbox = devInbox
		deps.StreamHub = broadcaster
	}
	if deps.DevRoutes {
		logger.Info("development inbox mounted at /api/dev/messages")
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go runCodeCleanup(ctx, authService, cfg.OTPCleanupInterval, logger)

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("email_provider", cfg.EmailProvider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("server shutting down")

	if broadcaster != nil {
		// Shutdown waits for active connections, including open streams.
		broadcaster.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func runCodeCleanup(ctx context.Context, authService *services.AuthService, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		logger.Info("expired code cleanup disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := authService.CleanupExpiredCodes(ctx)
			if err != nil {
				logger.Warn("failed to cleanup expired codes", zap.Error(err))
			} else if count > 0 {
				logger.Info("cleaned up expired codes", zap.Int64("count", count))
			}
		}
	}
}
