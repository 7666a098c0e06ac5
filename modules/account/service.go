package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authflow/handler"
	"github.com/dmitrymomot/authflow/pkg/auth"
	"github.com/dmitrymomot/authflow/pkg/cookie"
	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/session"
	"github.com/dmitrymomot/authflow/pkg/validator"
)

// Mode selects what AuthHelper does with a credential pair.
type Mode string

const (
	ModeSignup Mode = "signup"
	ModeLogin  Mode = "login"
)

// ParseMode maps "login" to ModeLogin and everything else to ModeSignup.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeLogin)) {
		return ModeLogin
	}
	return ModeSignup
}

// SessionManager is the part of session.Manager the service needs.
type SessionManager interface {
	CreateSession(ctx context.Context, userID uuid.UUID) (*session.Session, cookie.Cookie, error)
	CreateBlankCookie() cookie.Cookie
	InvalidateSession(ctx context.Context, id string) error
	InvalidateUserSessions(ctx context.Context, userID uuid.UUID) error
}

// Outcome is the result of an account action. Either Errors is non-empty,
// or Cookie and Redirect describe the response.
type Outcome struct {
	Errors   handler.ValidationError
	User     *auth.User
	Cookie   *cookie.Cookie
	Redirect string
}

// OK reports whether the action succeeded.
func (o Outcome) OK() bool {
	return o.Errors.IsEmpty()
}

func fieldError(field, message string) Outcome {
	verr := handler.NewValidationError()
	verr.Add(field, message)
	return Outcome{Errors: verr}
}

// Service runs signup, login and logout.
type Service struct {
	cfg       Config
	passwords auth.PasswordAuthenticator
	sessions  SessionManager
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(cfg Config, passwords auth.PasswordAuthenticator, sessions SessionManager, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg.withDefaults(),
		passwords: passwords,
		sessions:  sessions,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup registers a user and starts their session.
func (s *Service) Signup(ctx context.Context, email, password string) (Outcome, error) {
	email = auth.NormalizeEmail(email)

	if verr := toValidationError(validator.Apply(
		validator.EmailShape("email", email, MsgInvalidEmail),
		validator.MinLenTrimmed("password", password, s.cfg.MinPasswordLength, msgPasswordTooShort(s.cfg.MinPasswordLength)),
		validator.MaxBytes("password", password, auth.MaxPasswordBytes, MsgPasswordTooLong),
	)); verr != nil {
		return Outcome{Errors: verr}, nil
	}

	user, err := s.passwords.Register(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailAlreadyExists) {
			return fieldError("email", MsgEmailTaken), nil
		}
		return Outcome{}, fmt.Errorf("register: %w", err)
	}

	return s.startSession(ctx, user)
}

// Login verifies credentials and starts a session. Unknown email and wrong
// password produce the same Outcome.
func (s *Service) Login(ctx context.Context, email, password string) (Outcome, error) {
	email = auth.NormalizeEmail(email)

	if verr := toValidationError(validator.Apply(
		validator.EmailShape("email", email, MsgInvalidEmail),
		validator.Required("password", password, MsgPasswordRequired),
	)); verr != nil {
		return Outcome{Errors: verr}, nil
	}

	user, err := s.passwords.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.InfoContext(ctx, "login rejected",
				logger.Component("account"),
				logger.Event("login_failed"),
			)
			return fieldError("email", MsgInvalidCredentials), nil
		}
		return Outcome{}, fmt.Errorf("authenticate: %w", err)
	}

	return s.startSession(ctx, user)
}

// AuthHelper dispatches to Login for ModeLogin and to Signup otherwise.
func (s *Service) AuthHelper(ctx context.Context, mode Mode, email, password string) (Outcome, error) {
	if mode == ModeLogin {
		return s.Login(ctx, email, password)
	}
	return s.Signup(ctx, email, password)
}

// Logout ends the session with id and clears the cookie. An empty id only
// clears the cookie.
func (s *Service) Logout(ctx context.Context, sessionID string) (Outcome, error) {
	if sessionID != "" {
		if err := s.sessions.InvalidateSession(ctx, sessionID); err != nil {
			return Outcome{}, fmt.Errorf("logout: %w", err)
		}
	}
	return s.signedOut(), nil
}

// LogoutEverywhere ends every session of userID.
func (s *Service) LogoutEverywhere(ctx context.Context, userID uuid.UUID) (Outcome, error) {
	if err := s.sessions.InvalidateUserSessions(ctx, userID); err != nil {
		return Outcome{}, fmt.Errorf("logout everywhere: %w", err)
	}

	s.logger.InfoContext(ctx, "all sessions revoked",
		logger.UserID(userID.String()),
		logger.Component("account"),
	)
	return s.signedOut(), nil
}

func (s *Service) startSession(ctx context.Context, user *auth.User) (Outcome, error) {
	_, c, err := s.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return Outcome{}, fmt.Errorf("start session: %w", err)
	}
	return Outcome{User: user, Cookie: &c, Redirect: s.cfg.SuccessRedirect}, nil
}

func (s *Service) signedOut() Outcome {
	c := s.sessions.CreateBlankCookie()
	return Outcome{Cookie: &c, Redirect: s.cfg.LogoutRedirect}
}

// toValidationError converts validator failures into the field map the
// views and the JSON envelope use. It returns nil when err is nil.
func toValidationError(err error) handler.ValidationError {
	ve := validator.ExtractValidationErrors(err)
	if ve.IsEmpty() {
		return nil
	}
	out := handler.NewValidationError()
	for _, e := range ve {
		out.Add(e.Field, e.Message)
	}
	return out
}
