package cookie

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Cookie describes a Set-Cookie header. The zero value is not useful; build
// descriptors with Manager.Issue or Manager.Blank.
type Cookie struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	MaxAge   int
	Expires  time.Time
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// IsBlank reports whether c clears the cookie on the client.
func (c Cookie) IsBlank() bool {
	return c.Value == "" && c.MaxAge < 0
}

// HTTP converts the descriptor to a *http.Cookie.
func (c Cookie) HTTP() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		MaxAge:   c.MaxAge,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
		SameSite: c.SameSite,
	}
}

// Write adds c to the response headers. It returns ErrInvalidCookie instead
// of letting net/http silently drop a malformed cookie.
func Write(w http.ResponseWriter, c Cookie) error {
	hc := c.HTTP()
	if err := hc.Valid(); err != nil {
		return errors.Join(ErrInvalidCookie, err)
	}
	http.SetCookie(w, hc)
	return nil
}

// Manager issues descriptors for a single cookie name with shared defaults.
type Manager struct {
	name     string
	defaults Options
}

// New returns a Manager for the named cookie. Defaults are Path "/",
// HttpOnly and SameSite=Lax.
func New(name string, opts ...Option) *Manager {
	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{
		name:     name,
		defaults: applyOptions(defaults, opts),
	}
}

// Name returns the cookie name.
func (m *Manager) Name() string {
	return m.name
}

// Issue builds a descriptor carrying value. Per-call options override the
// manager defaults. SameSite=None forces Secure.
func (m *Manager) Issue(value string, opts ...Option) Cookie {
	o := applyOptions(m.defaults, opts)
	if o.SameSite == http.SameSiteNoneMode {
		o.Secure = true
	}
	return Cookie{
		Name:     m.name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Expires:  o.Expires,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	}
}

// Blank builds a descriptor that removes the cookie from the client. Path and
// Domain must match the issued cookie or browsers ignore the removal.
func (m *Manager) Blank() Cookie {
	return m.Issue("", WithMaxAge(-1), WithExpires(time.Unix(0, 0)))
}

// Read returns the cookie value from r, or ErrCookieNotFound.
func (m *Manager) Read(r *http.Request) (string, error) {
	c, err := r.Cookie(m.name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", fmt.Errorf("read cookie %q: %w", m.name, err)
	}
	return c.Value, nil
}
