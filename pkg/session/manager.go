package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/authflow/pkg/auth"
	"github.com/dmitrymomot/authflow/pkg/cookie"
	"github.com/dmitrymomot/authflow/pkg/environment"
	"github.com/dmitrymomot/authflow/pkg/logger"
)

const (
	tracerName = "github.com/dmitrymomot/authflow/pkg/session"

	// persistentCookieMaxAge is used when sessions do not expire. Browsers
	// cap cookie lifetime at 400 days.
	persistentCookieMaxAge = 400 * 24 * time.Hour
)

// UserReader resolves session owners. auth.UserStorage satisfies it.
type UserReader interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error)
}

// Result is the outcome of validating a session id.
//
// User and Session are both set or both nil. Cookie is the change the
// response should carry: nil for none, a session cookie after a refresh, or
// a blank cookie when the id did not resolve.
type Result struct {
	User    *auth.User
	Session *Session
	Cookie  *cookie.Cookie
}

// Authenticated reports whether the result carries a user.
func (r Result) Authenticated() bool {
	return r.User != nil && r.Session != nil
}

// Manager runs the session lifecycle on top of a Store.
type Manager struct {
	store  Store
	users  UserReader
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
	newID  func() (string, error)

	cookieName string
	cookieOpts []cookie.Option
	cookies    *cookie.Manager
	secure     *bool
	env        environment.Environment

	expires          bool
	lifetime         time.Duration
	refreshThreshold time.Duration
	loginPath        string
}

// New builds a Manager. Defaults: cookie "auth_session", 30 day lifetime,
// refresh when less than 15 days remain, Secure in production-like
// environments.
func New(store Store, users UserReader, opts ...Option) *Manager {
	m := &Manager{
		store:            store,
		users:            users,
		logger:           logger.Discard(),
		tracer:           otel.Tracer(tracerName),
		now:              time.Now,
		newID:            GenerateID,
		cookieName:       "auth_session",
		env:              environment.Development,
		expires:          true,
		lifetime:         30 * 24 * time.Hour,
		refreshThreshold: 15 * 24 * time.Hour,
		loginPath:        "/",
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.expires && m.refreshThreshold >= m.lifetime {
		m.logger.Warn("session refresh threshold is not below lifetime, using half the lifetime",
			slog.Duration("refresh_threshold", m.refreshThreshold),
			slog.Duration("lifetime", m.lifetime),
		)
		m.refreshThreshold = m.lifetime / 2
	}

	secure := m.env.IsProductionLike()
	if m.secure != nil {
		secure = *m.secure
	}

	cookieOpts := append([]cookie.Option{cookie.WithSecure(secure)}, m.cookieOpts...)
	m.cookies = cookie.New(m.cookieName, cookieOpts...)

	return m
}

// CookieName returns the session cookie name.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// CreateSession stores a new fresh session for userID and returns the
// cookie that carries it.
func (m *Manager) CreateSession(ctx context.Context, userID uuid.UUID) (*Session, cookie.Cookie, error) {
	ctx, span := m.tracer.Start(ctx, "session.Create")
	defer span.End()

	now := m.now()
	s := &Session{
		UserID:    userID,
		CreatedAt: now.UTC(),
		Fresh:     true,
	}
	if m.expires {
		exp := now.Add(m.lifetime).UTC()
		s.ExpiresAt = &exp
	}

	// A duplicate id means the generator is broken or astronomically
	// unlucky; one retry covers the latter.
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if s.ID, err = m.newID(); err != nil {
			break
		}
		if err = m.store.Put(ctx, s); !errors.Is(err, ErrDuplicateID) {
			break
		}
	}
	if err != nil {
		recordError(span, err)
		return nil, cookie.Cookie{}, fmt.Errorf("create session: %w", err)
	}

	m.logger.InfoContext(ctx, "session created",
		logger.UserID(userID.String()),
		logger.SessionID(s.ID),
		logger.Component("session"),
	)

	return s, m.sessionCookie(s, now), nil
}

// ValidateSession resolves id to its session and user.
//
// Unknown, expired and orphaned sessions yield a Result without a user and
// with a blank cookie; the last two are deleted. A session with less than
// the refresh threshold left is extended and comes back Fresh with a new
// cookie. Only store and user lookup failures are returned as errors.
func (m *Manager) ValidateSession(ctx context.Context, id string) (Result, error) {
	ctx, span := m.tracer.Start(ctx, "session.Validate")
	defer span.End()

	if id == "" {
		return m.invalid(), nil
	}

	s, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		span.SetAttributes(attribute.String("session.outcome", "not_found"))
		return m.invalid(), nil
	}
	if err != nil {
		recordError(span, err)
		return Result{}, fmt.Errorf("get session: %w", err)
	}

	now := m.now()
	if s.IsExpired(now) {
		span.SetAttributes(attribute.String("session.outcome", "expired"))
		if err := m.store.Delete(ctx, id); err != nil {
			recordError(span, err)
			return Result{}, fmt.Errorf("delete expired session: %w", err)
		}
		return m.invalid(), nil
	}

	user, err := m.owner(ctx, s)
	if errors.Is(err, ErrOrphanedSession) {
		span.SetAttributes(attribute.String("session.outcome", "orphaned"))
		m.logger.WarnContext(ctx, "deleting session of missing user",
			logger.UserID(s.UserID.String()),
			logger.SessionID(id),
			logger.Component("session"),
		)
		if err := m.store.Delete(ctx, id); err != nil {
			recordError(span, err)
			return Result{}, fmt.Errorf("delete orphaned session: %w", err)
		}
		return m.invalid(), nil
	}
	if err != nil {
		recordError(span, err)
		return Result{}, err
	}

	if s.ExpiresAt != nil && s.ExpiresAt.Sub(now) < m.refreshThreshold {
		exp := now.Add(m.lifetime).UTC()
		if err := m.store.Touch(ctx, id, &exp); err != nil {
			return m.touchFailed(ctx, span, err)
		}
		s.ExpiresAt = &exp
		s.Fresh = true

		span.SetAttributes(attribute.String("session.outcome", "refreshed"))
		m.logger.DebugContext(ctx, "session refreshed",
			logger.UserID(user.ID.String()),
			logger.SessionID(id),
			logger.Component("session"),
		)

		c := m.sessionCookie(s, now)
		return Result{User: user, Session: s, Cookie: &c}, nil
	}

	if s.Fresh {
		// First validation after creation. The cookie set at creation is
		// still correct, so only the stored flag changes.
		if err := m.store.Touch(ctx, id, s.ExpiresAt); err != nil {
			return m.touchFailed(ctx, span, err)
		}
		s.Fresh = false
	}

	span.SetAttributes(attribute.String("session.outcome", "valid"))
	return Result{User: user, Session: s}, nil
}

// CreateSessionCookie returns the cookie carrying s.
func (m *Manager) CreateSessionCookie(s *Session) cookie.Cookie {
	return m.sessionCookie(s, m.now())
}

// CreateBlankCookie returns a cookie that clears the session on the client.
func (m *Manager) CreateBlankCookie() cookie.Cookie {
	return m.cookies.Blank()
}

// InvalidateSession deletes the session. Missing sessions are not an error.
func (m *Manager) InvalidateSession(ctx context.Context, id string) error {
	ctx, span := m.tracer.Start(ctx, "session.Invalidate")
	defer span.End()

	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		recordError(span, err)
		return fmt.Errorf("invalidate session: %w", err)
	}

	m.logger.DebugContext(ctx, "session invalidated", logger.SessionID(id), logger.Component("session"))
	return nil
}

// InvalidateUserSessions deletes every session owned by userID.
func (m *Manager) InvalidateUserSessions(ctx context.Context, userID uuid.UUID) error {
	ctx, span := m.tracer.Start(ctx, "session.InvalidateUser")
	defer span.End()

	if err := m.store.DeleteByUserID(ctx, userID); err != nil {
		recordError(span, err)
		return fmt.Errorf("invalidate user sessions: %w", err)
	}

	m.logger.InfoContext(ctx, "user sessions invalidated",
		logger.UserID(userID.String()),
		logger.Component("session"),
	)
	return nil
}

func (m *Manager) owner(ctx context.Context, s *Session) (*auth.User, error) {
	if m.users == nil {
		return nil, errors.New("session: no user reader configured")
	}
	user, err := m.users.GetUserByID(ctx, s.UserID)
	if errors.Is(err, auth.ErrUserNotFound) {
		return nil, ErrOrphanedSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session owner: %w", err)
	}
	return user, nil
}

// touchFailed handles a session that disappeared between Get and Touch the
// same way as an unknown one.
func (m *Manager) touchFailed(ctx context.Context, span trace.Span, err error) (Result, error) {
	if errors.Is(err, ErrSessionNotFound) {
		return m.invalid(), nil
	}
	recordError(span, err)
	return Result{}, fmt.Errorf("touch session: %w", err)
}

func (m *Manager) invalid() Result {
	blank := m.cookies.Blank()
	return Result{Cookie: &blank}
}

func (m *Manager) sessionCookie(s *Session, now time.Time) cookie.Cookie {
	expiresAt := now.Add(persistentCookieMaxAge)
	if s.ExpiresAt != nil {
		expiresAt = *s.ExpiresAt
	}
	maxAge := int(expiresAt.Sub(now) / time.Second)
	if maxAge < 1 {
		maxAge = 1
	}
	return m.cookies.Issue(s.ID,
		cookie.WithMaxAge(maxAge),
		cookie.WithExpires(expiresAt),
		cookie.WithHTTPOnly(true),
	)
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
