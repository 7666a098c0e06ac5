package session

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/authflow/pkg/cookie"
	"github.com/dmitrymomot/authflow/pkg/environment"
)

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock replaces time.Now. Tests use it to move through a session's life.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator replaces GenerateID.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(m *Manager) {
		if gen != nil {
			m.newID = gen
		}
	}
}

// WithLifetime sets how long a session lives after creation or refresh.
func WithLifetime(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.lifetime = d
		}
	}
}

// WithRefreshThreshold sets the remaining lifetime below which a validated
// session is extended.
func WithRefreshThreshold(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.refreshThreshold = d
		}
	}
}

// WithExpires toggles expiry. Non-expiring sessions get a long-lived cookie.
func WithExpires(expires bool) Option {
	return func(m *Manager) {
		m.expires = expires
	}
}

func WithCookieName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithCookieOptions adds attributes to every session cookie.
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(m *Manager) {
		m.cookieOpts = append(m.cookieOpts, opts...)
	}
}

// WithSecure forces the Secure cookie attribute on or off regardless of the
// environment.
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = &secure
	}
}

// WithEnvironment sets the deployment environment. Production-like
// environments get Secure cookies unless WithSecure says otherwise.
func WithEnvironment(env environment.Environment) Option {
	return func(m *Manager) {
		m.env = env
	}
}

// WithLoginPath sets where RequireAuth sends unauthenticated requests.
func WithLoginPath(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.loginPath = path
		}
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Manager) {
		if tp != nil {
			m.tracer = tp.Tracer(tracerName)
		}
	}
}
