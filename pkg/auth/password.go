package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authflow/pkg/logger"
)

// PasswordAuthenticator registers and authenticates users by email and password.
type PasswordAuthenticator interface {
	Register(ctx context.Context, email, password string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
}

type passwordService struct {
	storage UserStorage
	hasher  Hasher
	logger  *slog.Logger
	now     func() time.Time

	// dummyHash is compared against when the email is unknown so both
	// failure paths spend the same time in the hasher.
	dummyHash func() []byte
}

type PasswordOption func(*passwordService)

func WithPasswordLogger(l *slog.Logger) PasswordOption {
	return func(s *passwordService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBcryptCost replaces the hasher with a BcryptHasher of the given cost.
func WithBcryptCost(cost int) PasswordOption {
	return func(s *passwordService) {
		s.hasher = NewBcryptHasher(cost)
	}
}

func WithHasher(h Hasher) PasswordOption {
	return func(s *passwordService) {
		if h != nil {
			s.hasher = h
		}
	}
}

func WithPasswordClock(now func() time.Time) PasswordOption {
	return func(s *passwordService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewPasswordService builds a PasswordAuthenticator over storage. Input
// shape (email format, password length) is the caller's concern.
func NewPasswordService(storage UserStorage, opts ...PasswordOption) PasswordAuthenticator {
	s := &passwordService{
		storage: storage,
		hasher:  NewBcryptHasher(bcrypt.DefaultCost),
		logger:  logger.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.dummyHash = sync.OnceValue(func() []byte {
		hash, err := s.hasher.Hash("authflow-timing-equalizer")
		if err != nil {
			s.logger.Error("failed to build dummy password hash", logger.Error(err), logger.Component("auth"))
			return nil
		}
		return hash
	})

	return s
}

// Register hashes password and stores a new user. A taken email yields
// ErrEmailAlreadyExists; the uniqueness check is left to storage so that
// concurrent registrations cannot both succeed.
func (s *passwordService) Register(ctx context.Context, email, password string) (*User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New(),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.UserID(user.ID.String()),
		logger.Component("auth"),
		logger.Event("register"),
	)

	return user, nil
}

// Authenticate returns the user whose credentials match. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (s *passwordService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.storage.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("get user by email: %w", err)
		}
		if hash := s.dummyHash(); hash != nil {
			_ = s.hasher.Compare(hash, password)
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return user, nil
}
