package session

import "errors"

var (
	ErrSessionNotFound = errors.New("session.not_found")
	ErrSessionExpired  = errors.New("session.expired")
	ErrDuplicateID     = errors.New("session.duplicate_id")
	ErrInvalidSession  = errors.New("session.invalid")
	ErrIDGeneration    = errors.New("session.id_generation_failed")
	ErrInvalidConfig   = errors.New("session.invalid_config")

	// ErrOrphanedSession marks a session whose user no longer exists.
	// ValidateSession recovers from it by deleting the session.
	ErrOrphanedSession = errors.New("session.orphaned")
)
