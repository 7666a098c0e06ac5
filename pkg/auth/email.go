package auth

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail returns the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(email)))
}
