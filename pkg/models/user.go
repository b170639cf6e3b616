package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Name          *string    `json:"name,omitempty" db:"name"`
	Email         string     `json:"email" db:"email"`
	EmailVerified *time.Time `json:"email_verified,omitempty" db:"email_verified"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// DisplayName returns the stored name, or an empty string when none is set.
func (u *User) DisplayName() string {
	if u == nil || u.Name == nil {
		return ""
	}
	return *u.Name
}

// OneTimeCode is a hashed login code bound to an email address.
// The plaintext is never stored.
type OneTimeCode struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	HashedCode string    `json:"-" db:"hashed_code"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	ExpiresAt  time.Time `json:"expires_at" db:"expires_at"`
}

// IsExpired reports whether the code is past its expiry at now.
func (c *OneTimeCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
