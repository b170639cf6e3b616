package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/kamikazebr/todo-otp/internal/server/config"
	"github.com/kamikazebr/todo-otp/internal/server/services"
	"github.com/kamikazebr/todo-otp/internal/server/storage"
	"github.com/kamikazebr/todo-otp/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative commands",
	Long:  "Administrative commands for managing users, codes and email delivery",
}

var cleanupCodesCmd = &cobra.Command{
	Use:   "cleanup-codes",
	Short: "Delete expired one-time codes",
	Run:   runCleanupCodesCommand,
}

var listUsersCmd = &cobra.Command{
	Use:   "list-users",
	Short: "List all users",
	Run:   runListUsersCommand,
}

var sendTestEmailCmd = &cobra.Command{
	Use:   "send-test-email",
	Short: "Send a sample sign-in email through the configured provider",
	Run:   runSendTestEmailCommand,
}

func init() {
	sendTestEmailCmd.Flags().String("to", "", "Recipient email (required)")
	sendTestEmailCmd.MarkFlagRequired("to")

	adminCmd.AddCommand(
		cleanupCodesCmd,
		listUsersCmd,
		sendTestEmailCmd,
	)
}

func runCleanupCodesCommand(cmd *cobra.Command, args []string) {
	cfg, logger := mustLoadConfig()
	defer logger.Sync()

	ctx := context.Background()
	db := mustOpenDB(ctx, cfg, logger)
	defer db.Close()

	authService := services.NewAuthService(storage.NewAuthStore(db), nil, authConfig(cfg), logger)
	count, err := authService.CleanupExpiredCodes(ctx)
	if err != nil {
		logger.Fatal("failed to cleanup expired codes", zap.Error(err))
	}

	fmt.Printf("Deleted %d expired code(s)\n", count)
}

func runListUsersCommand(cmd *cobra.Command, args []string) {
	cfg, logger := mustLoadConfig()
	defer logger.Sync()

	ctx := context.Background()
	db := mustOpenDB(ctx, cfg, logger)
	defer db.Close()

	users, err := services.NewUserService(storage.NewUserRepository(db)).ListUsers(ctx)
	if err != nil {
		logger.Fatal("failed to list users", zap.Error(err))
	}

	if len(users) == 0 {
		fmt.Println("No users found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tVERIFIED\tCREATED")
	for _, u := range users {
		verified := "-"
		if u.EmailVerified != nil {
			verified = u.EmailVerified.Format(time.RFC3339)
		}
		name := u.DisplayName()
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, name, verified, u.CreatedAt.Format(time.RFC3339))
	}
	w.Flush()
	fmt.Printf("\nTotal: %d user(s)\n", len(users))
}

func runSendTestEmailCommand(cmd *cobra.Command, args []string) {
	to, _ := cmd.Flags().GetString("to")
	to = utils.NormalizeEmail(to)
	if !utils.IsValidEmail(to) {
		fmt.Fprintf(os.Stderr, "Error: invalid email %q\n", to)
		os.Exit(1)
	}

	cfg, logger := mustLoadConfig()
	defer logger.Sync()

	ctx := context.Background()

	var inbox *services.DevInbox
	if cfg.EmailProvider == config.EmailProviderDev {
		db := mustOpenDB(ctx, cfg, logger)
		defer db.Close()
		inbox = services.NewDevInbox(storage.NewDevMessageRepository(db), nil, logger)
	}

	mailer, err := newMailer(ctx, cfg, inbox, logger)
	if err != nil {
		logger.Fatal("failed to initialize mailer", zap.Error(err))
	}

	msg, err := services.RenderOTPEmail(services.OTPEmailData{Code: "123456", ExpiresIn: cfg.OTPTTL})
	if err != nil {
		logger.Fatal("failed to render email", zap.Error(err))
	}
	msg.To = to
	msg.Subject = "[test] " + msg.Subject

	if err := mailer.Deliver(ctx, msg); err != nil {
		logger.Fatal("failed to send test email", zap.Error(err))
	}

	fmt.Printf("Test email sent to %s via %s\n", to, cfg.EmailProvider)
}
