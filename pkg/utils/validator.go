package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	authCodeRegex = regexp.MustCompile(`^[0-9]{6}$`)
)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidAuthCode reports whether code is exactly six ASCII digits.
func IsValidAuthCode(code string) bool {
	return authCodeRegex.MatchString(code)
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
