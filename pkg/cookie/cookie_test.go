package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authflow/pkg/cookie"
)

func TestManager_Issue(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		m := cookie.New("auth_session")
		c := m.Issue("abc")

		assert.Equal(t, "auth_session", c.Name)
		assert.Equal(t, "abc", c.Value)
		assert.Equal(t, "/", c.Path)
		assert.True(t, c.HttpOnly)
		assert.False(t, c.Secure)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Zero(t, c.MaxAge)
		assert.False(t, c.IsBlank())
	})

	t.Run("manager and call options", func(t *testing.T) {
		t.Parallel()
		exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		m := cookie.New("sid",
			cookie.WithSecure(true),
			cookie.WithDomain("example.com"),
			cookie.WithSameSite(http.SameSiteStrictMode),
		)
		c := m.Issue("v", cookie.WithMaxAge(60), cookie.WithExpires(exp), cookie.WithPath("/app"))

		assert.True(t, c.Secure)
		assert.Equal(t, "example.com", c.Domain)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
		assert.Equal(t, 60, c.MaxAge)
		assert.Equal(t, exp, c.Expires)
		assert.Equal(t, "/app", c.Path)

		// call options do not leak into later cookies
		assert.Equal(t, "/", m.Issue("w").Path)
	})

	t.Run("same site none forces secure", func(t *testing.T) {
		t.Parallel()
		m := cookie.New("sid", cookie.WithSecure(false), cookie.WithSameSite(http.SameSiteNoneMode))

		assert.True(t, m.Issue("v").Secure)
		assert.True(t, m.Blank().Secure)
		assert.False(t, m.Issue("v", cookie.WithSameSite(http.SameSiteLaxMode)).Secure)
	})
}

func TestManager_Blank(t *testing.T) {
	t.Parallel()

	m := cookie.New("auth_session", cookie.WithSecure(true), cookie.WithDomain("example.com"))
	c := m.Blank()

	assert.True(t, c.IsBlank())
	assert.Equal(t, "auth_session", c.Name)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
	assert.Equal(t, time.Unix(0, 0), c.Expires)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "example.com", c.Domain)
}

func TestManager_Read(t *testing.T) {
	t.Parallel()

	m := cookie.New("auth_session")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := m.Read(req)
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)

	req.AddCookie(&http.Cookie{Name: "auth_session", Value: "abc"})
	v, err := m.Read(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}

func TestWrite(t *testing.T) {
	t.Parallel()

	t.Run("valid cookie", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		c := cookie.New("auth_session").Issue("abc", cookie.WithMaxAge(3600))

		require.NoError(t, cookie.Write(rec, c))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "auth_session", cookies[0].Name)
		assert.Equal(t, "abc", cookies[0].Value)
		assert.Equal(t, 3600, cookies[0].MaxAge)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("blank cookie", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		require.NoError(t, cookie.Write(rec, cookie.New("auth_session").Blank()))

		header := rec.Header().Get("Set-Cookie")
		assert.Contains(t, header, "auth_session=;")
		assert.Contains(t, header, "Max-Age=0")
	})

	t.Run("invalid name", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		err := cookie.Write(rec, cookie.New("bad name").Issue("v"))
		assert.ErrorIs(t, err, cookie.ErrInvalidCookie)
		assert.Empty(t, rec.Header().Get("Set-Cookie"))
	})
}

func TestParseSameSite(t *testing.T) {
	t.Parallel()

	tests := map[string]http.SameSite{
		"":       http.SameSiteLaxMode,
		"lax":    http.SameSiteLaxMode,
		"Strict": http.SameSiteStrictMode,
		"NONE":   http.SameSiteNoneMode,
	}
	for in, want := range tests {
		got, err := cookie.ParseSameSite(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := cookie.ParseSameSite("sometimes")
	assert.ErrorIs(t, err, cookie.ErrInvalidSameSite)
}
