package utils

import "strings"

// SplitFullName splits a stored display name into a first name and the
// rest. An empty name yields two empty strings.
//
// Example:
//
//	SplitFullName("Ada King Lovelace") // "Ada", "King Lovelace"
func SplitFullName(fullName string) (firstName, lastName string) {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// JoinFullName joins first and last name with a single space, dropping
// empty parts.
func JoinFullName(firstName, lastName string) string {
	var parts []string
	for _, p := range []string{firstName, lastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
