package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists sessions.
type Store interface {
	// Put inserts a new session. It returns ErrDuplicateID if the id exists.
	Put(ctx context.Context, s *Session) error

	// Get returns the session or ErrSessionNotFound. Expired sessions may
	// still be returned; expiry is the Manager's decision.
	Get(ctx context.Context, id string) (*Session, error)

	// Touch sets a new expiry and clears the Fresh flag. It returns
	// ErrSessionNotFound if the session is gone.
	Touch(ctx context.Context, id string, expiresAt *time.Time) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByUserID removes every session owned by userID.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired removes sessions that expired at or before now and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
