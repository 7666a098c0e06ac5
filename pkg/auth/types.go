package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is an account identified by a normalized email.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// UserStorage persists users.
//
// CreateUser must fail with ErrEmailAlreadyExists when the email is taken,
// including when two creates race. Lookups return ErrUserNotFound when no
// record matches.
type UserStorage interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}
