package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authflow/pkg/auth"
	"github.com/dmitrymomot/authflow/pkg/pg"
)

const usersEmailConstraint = "users_email_key"

// Users is the PostgreSQL auth.UserStorage.
type Users struct {
	db DBTX
}

func NewUsers(db DBTX) *Users {
	return &Users{db: db}
}

// CreateUser inserts user. The unique constraint on email decides races.
func (s *Users) CreateUser(ctx context.Context, user *auth.User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err, usersEmailConstraint) {
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Users) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

// GetUserByEmail expects email already normalized.
func (s *Users) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

// DeleteUser removes the user; the foreign key cascades to their sessions.
func (s *Users) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*auth.User, error) {
	var u auth.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

var _ auth.UserStorage = (*Users)(nil)
