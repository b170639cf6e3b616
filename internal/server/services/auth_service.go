package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kamikazebr/todo-otp/internal/server/storage"
	"github.com/kamikazebr/todo-otp/pkg/models"
	"github.com/kamikazebr/todo-otp/pkg/utils"
	"go.uber.org/zap"
)

// dropCodeTimeout bounds the cleanup of a code whose delivery failed.
const dropCodeTimeout = 5 * time.Second

type AuthConfig struct {
	CodeTTL        time.Duration
	ResendCooldown time.Duration
	BcryptCost     int

	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration
}

// Identity is what a successful code verification proves.
type Identity struct {
	UserID  uuid.UUID
	Email   string
	Name    string
	Created bool
}

type AuthService struct {
	store  storage.AuthStore
	mailer Mailer
	cfg    AuthConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthService(store storage.AuthStore, mailer Mailer, cfg AuthConfig, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		store:  store,
		mailer: mailer,
		cfg:    cfg,
		logger: logger.Named("auth"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RequestCode issues a new code for email and mails it. It returns the
// code lifetime in seconds.
func (s *AuthService) RequestCode(ctx context.Context, email string) (int, error) {
	email = utils.NormalizeEmail(email)
	if !utils.IsValidEmail(email) {
		return 0, validationError("invalid email format")
	}

	code, err := utils.GenerateAuthCode()
	if err != nil {
		return 0, fmt.Errorf("failed to generate code: %w", err)
	}
	hash, err := utils.HashAuthCode(code, s.cfg.BcryptCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash code: %w", err)
	}

	now := s.now()
	var user *models.User
	err = s.store.RunAuthTx(ctx, func(ctx context.Context, codes storage.OTPStore, users storage.UserStore) error {
		if err := codes.LockEmail(ctx, email); err != nil {
			return storageError("lock email", err)
		}

		latest, err := codes.LatestCode(ctx, email, true)
		if err != nil {
			return storageError("get latest code", err)
		}
		if latest != nil && !latest.IsExpired(now) {
			if wait := latest.CreatedAt.Add(s.cfg.ResendCooldown).Sub(now); wait > 0 {
				return &RateLimitError{RetryAfter: wait}
			}
		}

		// A new code supersedes any older one.
		if _, err := codes.DeleteCodesForEmail(ctx, email); err != nil {
			return storageError("delete old codes", err)
		}
		if err := codes.CreateCode(ctx, &models.OneTimeCode{
			Email:      email,
			HashedCode: hash,
			CreatedAt:  now,
			ExpiresAt:  now.Add(s.cfg.CodeTTL),
		}); err != nil {
			return storageError("save code", err)
		}

		user, err = users.GetByEmail(ctx, email)
		if err != nil {
			return storageError("get user", err)
		}
		return nil
	})
	if err != nil {
		return 0, storageError("request code", err)
	}

	msg, err := RenderOTPEmail(OTPEmailData{
		Code:          code,
		RecipientName: user.DisplayName(),
		ExpiresIn:     s.cfg.CodeTTL,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to render email: %w", err)
	}
	msg.To = email

	if err := s.mailer.Deliver(ctx, msg); err != nil {
		s.logger.Error("code delivery failed", zap.String("email", email), zap.Error(err))
		// Drop the undeliverable code so the cooldown does not block a retry.
		// The request context may be the reason delivery failed.
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dropCodeTimeout)
		defer cancel()
		if _, derr := s.store.Codes().DeleteCodesForEmail(dctx, email); derr != nil {
			s.logger.Warn("failed to drop undelivered code", zap.String("email", email), zap.Error(derr))
		}
		return 0, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	s.logger.Info("code issued", zap.String("email", email), zap.Time("expires_at", now.Add(s.cfg.CodeTTL)))
	return int(s.cfg.CodeTTL.Seconds()), nil
}

// VerifyCredentials checks code against the latest code issued for email.
// On success every outstanding code for the email is consumed and the
// user is created if it did not exist yet.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, code string) (*Identity, error) {
	email = utils.NormalizeEmail(email)
	if !utils.IsValidEmail(email) {
		return nil, validationError("invalid email format")
	}
	if !utils.IsValidAuthCode(code) {
		return nil, validationError("code must be exactly 6 digits")
	}

	now := s.now()
	var (
		identity  *Identity
		verifyErr error
	)
	err := s.store.RunAuthTx(ctx, func(ctx context.Context, codes storage.OTPStore, users storage.UserStore) error {
		if err := codes.LockEmail(ctx, email); err != nil {
			return storageError("lock email", err)
		}

		latest, err := codes.LatestCode(ctx, email, true)
		if err != nil {
			return storageError("get latest code", err)
		}
		if latest == nil {
			verifyErr = ErrCodeNotFound
			return nil
		}

		if latest.IsExpired(now) {
			// Commit the purge, then report the expiry.
			if _, err := codes.DeleteCodesForEmail(ctx, email); err != nil {
				return storageError("delete expired codes", err)
			}
			verifyErr = ErrCodeExpired
			return nil
		}

		ok, err := utils.CompareAuthCode(latest.HashedCode, code)
		if err != nil {
			return storageError("compare code", err)
		}
		if !ok {
			verifyErr = ErrInvalidCode
			return nil
		}

		user, err := users.GetByEmail(ctx, email)
		if err != nil {
			return storageError("get user", err)
		}
		created := false
		if user == nil {
			user = &models.User{Email: email, EmailVerified: &now}
			if err := users.Create(ctx, user); err != nil {
				return storageError("create user", err)
			}
			created = true
		} else if user.EmailVerified == nil {
			if err := users.MarkEmailVerified(ctx, user.ID, now); err != nil {
				return storageError("mark email verified", err)
			}
			user.EmailVerified = &now
		}

		if _, err := codes.DeleteCodesForEmail(ctx, email); err != nil {
			return storageError("consume codes", err)
		}

		identity = &Identity{
			UserID:  user.ID,
			Email:   user.Email,
			Name:    user.DisplayName(),
			Created: created,
		}
		return nil
	})
	if err != nil {
		return nil, storageError("verify code", err)
	}
	if verifyErr != nil {
		s.logger.Info("code verification failed", zap.String("email", email), zap.Error(verifyErr))
		return nil, verifyErr
	}

	s.logger.Info("code verified",
		zap.String("email", email),
		zap.String("user_id", identity.UserID.String()),
		zap.Bool("new_user", identity.Created),
	)
	return identity, nil
}

// IssueSession signs a session token for a verified identity.
func (s *AuthService) IssueSession(identity *Identity) (string, time.Time, error) {
	if identity == nil {
		return "", time.Time{}, errors.New("identity is nil")
	}
	if s.cfg.JWTSecret == "" {
		return "", time.Time{}, fmt.Errorf("JWT_SECRET not configured")
	}
	return utils.GenerateJWT(identity.UserID, identity.Email, s.cfg.JWTIssuer, s.cfg.JWTSecret, s.cfg.SessionTTL)
}

// ValidateSession parses a session token issued by IssueSession.
func (s *AuthService) ValidateSession(token string) (*utils.Claims, error) {
	return utils.ValidateJWT(token, s.cfg.JWTSecret)
}

// CleanupExpiredCodes deletes every code already past its expiry.
func (s *AuthService) CleanupExpiredCodes(ctx context.Context) (int64, error) {
	n, err := s.store.Codes().DeleteExpiredCodes(ctx, s.now())
	if err != nil {
		return 0, storageError("cleanup expired codes", err)
	}
	return n, nil
}
