package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

// idBytes is the amount of randomness in a session id.
const idBytes = 32

// Session is a server-side login record.
type Session struct {
	ID     string
	UserID uuid.UUID

	CreatedAt time.Time
	// ExpiresAt is nil for sessions that never expire.
	ExpiresAt *time.Time

	// Fresh is true until the session is validated for the first time after
	// creation, and again on the validation that extends it.
	Fresh bool
}

// IsExpired reports whether s has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	c := *s
	if s.ExpiresAt != nil {
		exp := *s.ExpiresAt
		c.ExpiresAt = &exp
	}
	return &c
}

// GenerateID returns 32 random bytes encoded as unpadded base64url.
func GenerateID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrIDGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
