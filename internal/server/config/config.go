// Package config loads server configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	EmailProviderResend = "resend"
	EmailProviderSES    = "ses"
	EmailProviderDev    = "dev"
)

type Config struct {
	Env     string `mapstructure:"APP_ENV"`
	APIHost string `mapstructure:"API_HOST"`
	APIPort string `mapstructure:"API_PORT"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	JWTIssuer  string        `mapstructure:"JWT_ISSUER"`
	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`

	// OTPTTL is how long an issued code stays valid.
	OTPTTL time.Duration `mapstructure:"OTP_TTL"`
	// OTPResendCooldown is the minimum gap between two code requests for
	// the same email.
	OTPResendCooldown  time.Duration `mapstructure:"OTP_RESEND_COOLDOWN"`
	OTPCleanupInterval time.Duration `mapstructure:"OTP_CLEANUP_INTERVAL"`
	BcryptCost         int           `mapstructure:"BCRYPT_COST"`

	EmailProvider      string `mapstructure:"EMAIL_PROVIDER"`
	FromEmail          string `mapstructure:"FROM_EMAIL"`
	ResendAPIKey       string `mapstructure:"RESEND_API_KEY"`
	AWSRegion          string `mapstructure:"AWS_REGION"`
	AWSAccessKeyID     string `mapstructure:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `mapstructure:"AWS_SECRET_ACCESS_KEY"`

	// DevStreamMaxAge bounds how long one inbox stream subscriber is kept.
	DevStreamMaxAge time.Duration `mapstructure:"DEV_STREAM_MAX_AGE"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogDev   bool   `mapstructure:"LOG_DEV"`
}

var keys = []string{
	"APP_ENV", "API_HOST", "API_PORT", "DATABASE_URL",
	"JWT_SECRET", "JWT_ISSUER", "SESSION_TTL",
	"OTP_TTL", "OTP_RESEND_COOLDOWN", "OTP_CLEANUP_INTERVAL", "BCRYPT_COST",
	"EMAIL_PROVIDER", "FROM_EMAIL", "RESEND_API_KEY",
	"AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
	"DEV_STREAM_MAX_AGE", "LOG_LEVEL", "LOG_DEV",
}

// Load reads .env (if present) into the process environment, then builds
// and validates a Config. Variables already set in the environment win
// over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_ENV", EnvProduction)
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", "8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "todo-otp")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("OTP_TTL", "10m")
	v.SetDefault("OTP_RESEND_COOLDOWN", "60s")
	v.SetDefault("OTP_CLEANUP_INTERVAL", "5m")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("EMAIL_PROVIDER", "")
	v.SetDefault("FROM_EMAIL", "noreply@todo-otp.local")
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("DEV_STREAM_MAX_AGE", "24h")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("LOG_DEV", false)

	v.AutomaticEnv()
	// AutomaticEnv only consults keys viper already knows about when
	// unmarshalling; binding them explicitly keeps that true.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.EmailProvider = strings.ToLower(strings.TrimSpace(cfg.EmailProvider))
	if cfg.EmailProvider == "" {
		if cfg.IsDevelopment() {
			cfg.EmailProvider = EmailProviderDev
		} else {
			cfg.EmailProvider = EmailProviderResend
		}
	}
	if cfg.LogLevel == "" {
		if cfg.LogDev {
			cfg.LogLevel = "debug"
		} else {
			cfg.LogLevel = "info"
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.EmailProvider {
	case EmailProviderResend, EmailProviderSES, EmailProviderDev:
	default:
		return fmt.Errorf("config: unknown EMAIL_PROVIDER %q", c.EmailProvider)
	}
	// The captured mail is only readable through the development inbox routes.
	if c.EmailProvider == EmailProviderDev && !c.IsDevelopment() {
		return errors.New("config: EMAIL_PROVIDER=dev requires APP_ENV=development")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if c.OTPTTL <= 0 {
		return errors.New("config: OTP_TTL must be positive")
	}
	if c.OTPResendCooldown < 0 {
		return errors.New("config: OTP_RESEND_COOLDOWN must not be negative")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}
	return nil
}

// RequireServe checks the settings the HTTP server cannot start without.
func (c *Config) RequireServe() error {
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL must be set")
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be set")
	}
	if c.EmailProvider == EmailProviderResend && c.ResendAPIKey == "" {
		return errors.New("config: RESEND_API_KEY must be set when EMAIL_PROVIDER=resend")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return c.APIHost + ":" + c.APIPort
}
