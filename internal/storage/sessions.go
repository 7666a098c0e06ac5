package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authflow/pkg/pg"
	"github.com/dmitrymomot/authflow/pkg/session"
)

// Sessions is the PostgreSQL session.Store.
type Sessions struct {
	db DBTX
}

func NewSessions(db DBTX) *Sessions {
	return &Sessions{db: db}
}

func (s *Sessions) Put(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.ID == "" {
		return session.ErrInvalidSession
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO sessions (id, user_id, created_at, expires_at, fresh)
		VALUES ($1, $2, $3, $4, $5)
	`, sess.ID, sess.UserID, sess.CreatedAt, sess.ExpiresAt, sess.Fresh)
	switch {
	case err == nil:
		return nil
	case pg.IsDuplicateKeyError(err, "sessions_pkey"):
		return session.ErrDuplicateID
	case pg.IsForeignKeyViolationError(err):
		return errors.Join(session.ErrOrphanedSession, err)
	default:
		return fmt.Errorf("insert session: %w", err)
	}
}

func (s *Sessions) Get(ctx context.Context, id string) (*session.Session, error) {
	var sess session.Session
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, created_at, expires_at, fresh
		FROM sessions
		WHERE id = $1
	`, id).Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt, &sess.Fresh)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return &sess, nil
}

func (s *Sessions) Touch(ctx context.Context, id string, expiresAt *time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE sessions SET expires_at = $2, fresh = false
		WHERE id = $1
	`, id, expiresAt)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

func (s *Sessions) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Sessions) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

func (s *Sessions) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM sessions
		WHERE expires_at IS NOT NULL AND expires_at <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ session.Store = (*Sessions)(nil)
