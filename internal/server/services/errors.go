package services

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrRateLimited     = errors.New("too many code requests")
	ErrCodeNotFound    = errors.New("no code found for this email, please request a new one")
	ErrCodeExpired     = errors.New("code has expired, please request a new one")
	ErrInvalidCode     = errors.New("invalid code")
	ErrDeliveryFailed  = errors.New("failed to deliver email")
	ErrStorageFailed   = errors.New("storage error")
	ErrUserNotFound    = errors.New("user not found")
	ErrTodoNotFound    = errors.New("todo not found")
	ErrTodoForbidden   = errors.New("you do not have permission to access this todo")
	ErrMessageNotFound = errors.New("message not found")
)

// RateLimitError is returned when a code was issued for the same email
// less than the resend cooldown ago. It matches ErrRateLimited.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("please wait %s before requesting a new code", humanizeWait(e.RetryAfter))
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// RetryAfterSeconds rounds the wait up to whole seconds, never below 1.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int(math.Ceil(e.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func humanizeWait(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs <= 1 {
		return "1 second"
	}
	if secs < 60 {
		return fmt.Sprintf("%d seconds", secs)
	}
	mins := int(math.Ceil(float64(secs) / 60))
	if mins == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", mins)
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// storageError wraps err as ErrStorageFailed unless it already carries one
// of the auth outcomes.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		ErrValidation, ErrRateLimited, ErrCodeNotFound, ErrCodeExpired,
		ErrInvalidCode, ErrDeliveryFailed, ErrStorageFailed,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageFailed, op, err)
}
