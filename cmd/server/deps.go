package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kamikazebr/todo-otp/internal/server/config"
	"github.com/kamikazebr/todo-otp/internal/server/logging"
	"github.com/kamikazebr/todo-otp/internal/server/services"
	"github.com/kamikazebr/todo-otp/internal/server/storage"
	"go.uber.org/zap"
)

func mustLoadConfig() (*config.Config, *zap.Logger) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger
}

func mustOpenDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) *storage.DB {
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL must be set")
	}
	db, err := storage.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	logger.Info("database connected")
	return db
}

func authConfig(cfg *config.Config) services.AuthConfig {
	return services.AuthConfig{
		CodeTTL:        cfg.OTPTTL,
		ResendCooldown: cfg.OTPResendCooldown,
		BcryptCost:     cfg.BcryptCost,
		JWTSecret:      cfg.JWTSecret,
		JWTIssuer:      cfg.JWTIssuer,
		SessionTTL:     cfg.SessionTTL,
	}
}

// newMailer picks the delivery backend named by EMAIL_PROVIDER. The dev
// backend needs the inbox.
func newMailer(ctx context.Context, cfg *config.Config, inbox *services.DevInbox, logger *zap.Logger) (services.Mailer, error) {
	switch cfg.EmailProvider {
	case config.EmailProviderResend:
		return services.NewResendMailer(cfg.ResendAPIKey, cfg.FromEmail)
	case config.EmailProviderSES:
		return services.NewSESMailer(ctx, cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.FromEmail)
	case config.EmailProviderDev:
		if inbox == nil {
			return nil, fmt.Errorf("dev email provider requires the dev inbox")
		}
		return services.NewDevMailer(inbox, logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.EmailProvider)
	}
}
