package session

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/authflow/pkg/cookie"
)

// Config holds env-driven session settings.
type Config struct {
	CookieName       string        `env:"SESSION_COOKIE_NAME" envDefault:"auth_session"`
	Expires          bool          `env:"SESSION_EXPIRES" envDefault:"true"`
	Lifetime         time.Duration `env:"SESSION_LIFETIME" envDefault:"720h"`
	RefreshThreshold time.Duration `env:"SESSION_REFRESH_THRESHOLD" envDefault:"360h"`
	// CookieSecure is "auto", "true" or "false". Auto follows the environment.
	CookieSecure    string        `env:"SESSION_COOKIE_SECURE" envDefault:"auto"`
	CookieSameSite  string        `env:"SESSION_COOKIE_SAME_SITE" envDefault:"lax"`
	CookieDomain    string        `env:"SESSION_COOKIE_DOMAIN" envDefault:""`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`
	LoginPath       string        `env:"SESSION_LOGIN_PATH" envDefault:"/"`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		CookieName:       "auth_session",
		Expires:          true,
		Lifetime:         30 * 24 * time.Hour,
		RefreshThreshold: 15 * 24 * time.Hour,
		CookieSecure:     "auto",
		CookieSameSite:   "lax",
		CleanupInterval:  time.Hour,
		LoginPath:        "/",
	}
}

// Options translates cfg into Manager options.
func (c Config) Options() ([]Option, error) {
	sameSite, err := cookie.ParseSameSite(c.CookieSameSite)
	if err != nil {
		return nil, err
	}
	if c.Expires && c.RefreshThreshold >= c.Lifetime {
		return nil, fmt.Errorf("%w: SESSION_REFRESH_THRESHOLD %s must be below SESSION_LIFETIME %s",
			ErrInvalidConfig, c.RefreshThreshold, c.Lifetime)
	}

	opts := []Option{
		WithCookieName(c.CookieName),
		WithExpires(c.Expires),
		WithLifetime(c.Lifetime),
		WithRefreshThreshold(c.RefreshThreshold),
		WithLoginPath(c.LoginPath),
		WithCookieOptions(cookie.WithSameSite(sameSite)),
	}
	if c.CookieDomain != "" {
		opts = append(opts, WithCookieOptions(cookie.WithDomain(c.CookieDomain)))
	}

	switch v := strings.ToLower(strings.TrimSpace(c.CookieSecure)); v {
	case "", "auto":
	default:
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_COOKIE_SECURE %q: %w", c.CookieSecure, err)
		}
		if !secure && sameSite == http.SameSiteNoneMode {
			return nil, fmt.Errorf("%w: SESSION_COOKIE_SAME_SITE none requires a secure cookie", ErrInvalidConfig)
		}
		opts = append(opts, WithSecure(secure))
	}

	return opts, nil
}

// NewFromConfig builds a Manager from cfg. Extra options are applied last
// and win over cfg.
func NewFromConfig(cfg Config, store Store, users UserReader, opts ...Option) (*Manager, error) {
	cfgOpts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(store, users, append(cfgOpts, opts...)...), nil
}
