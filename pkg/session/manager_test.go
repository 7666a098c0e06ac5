package session_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authflow/pkg/environment"
	"github.com/dmitrymomot/authflow/pkg/session"
)

func TestManager_CreateSession(t *testing.T) {
	t.Parallel()

	t.Run("stores fresh session and issues cookie", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()

		s, c, err := f.manager.CreateSession(ctx, f.user.ID)
		require.NoError(t, err)

		assert.Len(t, s.ID, 43)
		assert.Equal(t, f.user.ID, s.UserID)
		assert.True(t, s.Fresh)
		require.NotNil(t, s.ExpiresAt)
		assert.Equal(t, f.clock.Now().Add(30*24*time.Hour), *s.ExpiresAt)

		assert.Equal(t, "auth_session", c.Name)
		assert.Equal(t, s.ID, c.Value)
		assert.True(t, c.HttpOnly)
		assert.False(t, c.Secure)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), c.MaxAge)

		stored, err := f.store.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.True(t, stored.Fresh)
	})

	t.Run("ids are unique", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		seen := make(map[string]struct{})
		for range 50 {
			s, _, err := f.manager.CreateSession(context.Background(), f.user.ID)
			require.NoError(t, err)
			_, dup := seen[s.ID]
			require.False(t, dup)
			seen[s.ID] = struct{}{}
		}
	})

	t.Run("secure in production", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, session.WithEnvironment(environment.Production))

		_, c, err := f.manager.CreateSession(context.Background(), f.user.ID)
		require.NoError(t, err)
		assert.True(t, c.Secure)
		assert.True(t, c.HttpOnly)
	})

	t.Run("explicit secure overrides environment", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, session.WithEnvironment(environment.Production), session.WithSecure(false))

		_, c, err := f.manager.CreateSession(context.Background(), f.user.ID)
		require.NoError(t, err)
		assert.False(t, c.Secure)
	})

	t.Run("non-expiring sessions", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, session.WithExpires(false))

		s, c, err := f.manager.CreateSession(context.Background(), f.user.ID)
		require.NoError(t, err)
		assert.Nil(t, s.ExpiresAt)
		assert.Equal(t, 400*24*60*60, c.MaxAge)
	})

	t.Run("retries once on duplicate id", func(t *testing.T) {
		t.Parallel()
		ids := []string{"dup", "dup", "unique"}
		next := 0
		gen := func() (string, error) {
			id := ids[next]
			next++
			return id, nil
		}
		f := newFixture(t, session.WithIDGenerator(gen))
		ctx := context.Background()

		first, _, err := f.manager.CreateSession(ctx, f.user.ID)
		require.NoError(t, err)
		assert.Equal(t, "dup", first.ID)

		second, _, err := f.manager.CreateSession(ctx, f.user.ID)
		require.NoError(t, err)
		assert.Equal(t, "unique", second.ID)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		m := session.New(failingStore{err: errStoreDown}, f.users)

		_, _, err := m.CreateSession(context.Background(), f.user.ID)
		assert.ErrorIs(t, err, errStoreDown)
	})
}

func TestManager_ValidateSession(t *testing.T) {
	t.Parallel()

	t.Run("empty and unknown ids yield blank cookie", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		for _, id := range []string{"", "unknown"} {
			res, err := f.manager.ValidateSession(context.Background(), id)
			require.NoError(t, err)
			assert.Nil(t, res.User)
			assert.Nil(t, res.Session)
			assert.False(t, res.Authenticated())
			require.NotNil(t, res.Cookie)
			assert.True(t, res.Cookie.IsBlank())
			assert.Equal(t, "auth_session", res.Cookie.Name)
		}
	})

	t.Run("first validation clears fresh without cookie", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		s, _, err := f.manager.CreateSession(ctx, f.user.ID)
		require.NoError(t, err)

		res, err := f.manager.ValidateSession(ctx, s.ID)
		require.NoError(t, err)
		require.True(t, res.Authenticated())
		assert.Equal(t, f.user.ID, res.User.ID)
		assert.Equal(t, s.ID, res.Session.ID)
		assert.False(t, res.Session.Fresh)
		assert.Nil(t, res.Cookie)

		stored, err := f.store.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.False(t, stored.Fresh)
		assert.Equal(t, *s.ExpiresAt, *stored.ExpiresAt)

		res, err = f.manager.ValidateSession(ctx, s.ID)
		require.NoError(t, err)
		assert.True(t, res.Authenticated())
		assert.Nil(t, res.Cookie)
	})

	t.Run("refreshes near expiry", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		s, _, err := f.manager.CreateSession(ctx, f.user.ID)
		require.NoError(t, err)

		f.clock.Advance(16 * 24 * time.Hour)

		res, err := f.manager.ValidateSession(ctx, s.ID)
		require.NoError(t, err)
		require.True(t, res.Authenticated())
		assert.True(t, res.Session.Fresh)

		want := f.clock.Now().Add(30 * 24 * time.Hour)
		require.NotNil(t, res.Session.ExpiresAt)
		assert.Equal(t, want, *res.Session.ExpiresAt)

		require.NotNil(t, res.Cookie)
		assert.Equal(t, s.ID, res.Cookie.Value)
		assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), res.Cookie.MaxAge)
		assert.True(t, res.Cookie.HttpOnly)

		stored, err := f.store.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, want, *stored.ExpiresAt)
	})

	t.Run("expired session is deleted", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		s, _, err := f.manager.CreateSession(ctx, f.user.ID)
		require.NoError(t, err)

		f.clock.Advance(30 * 24 * time.Hour)

		res, err := f.manager.ValidateSession(ctx, s.ID)
		require.NoError(t, err)
		assert.False(t, res.Authenticated())
		require.NotNil(t, res.Cookie)
		assert.True(t, res.Cookie.IsBlank())

		_, err = f.store.Get(ctx, s.ID)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("orphaned session is deleted", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		s, _, err := f.manager.CreateSession(ctx, f.user.ID)
		require.NoError(t, err)

		require.NoError(t, f.users.DeleteUser(ctx, f.user.ID))

		res, err := f.manager.ValidateSession(ctx, s.ID)
		require.NoError(t, err)
		assert.False(t, res.Authenticated())
		require.NotNil(t, res.Cookie)
		assert.True(t, res.Cookie.IsBlank())

		_, err = f.store.Get(ctx, s.ID)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("non-expiring sessions are never refreshed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, session.WithExpires(false))
		ctx := context.Background()
		s, _, err := f.manager.CreateSession(ctx, f.user.ID)
		require.NoError(t, err)

		f.clock.Advance(5 * 365 * 24 * time.Hour)

		res, err := f.manager.ValidateSession(ctx, s.ID)
		require.NoError(t, err)
		assert.True(t, res.Authenticated())
		assert.Nil(t, res.Cookie)
		assert.Nil(t, res.Session.ExpiresAt)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		m := session.New(failingStore{err: errStoreDown}, f.users)

		_, err := m.ValidateSession(context.Background(), "some-id")
		assert.ErrorIs(t, err, errStoreDown)
	})
}

func TestManager_Invalidate(t *testing.T) {
	t.Parallel()

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		s, _, err := f.manager.CreateSession(ctx, f.user.ID)
		require.NoError(t, err)

		for range 2 {
			require.NoError(t, f.manager.InvalidateSession(ctx, s.ID))

			res, err := f.manager.ValidateSession(ctx, s.ID)
			require.NoError(t, err)
			assert.False(t, res.Authenticated())
		}
	})

	t.Run("all sessions of a user", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()

		other := uuid.New()
		_, _, err := f.manager.CreateSession(ctx, other)
		require.NoError(t, err)
		for range 3 {
			_, _, err := f.manager.CreateSession(ctx, f.user.ID)
			require.NoError(t, err)
		}
		require.Equal(t, 4, f.store.Len())

		require.NoError(t, f.manager.InvalidateUserSessions(ctx, f.user.ID))
		assert.Equal(t, 1, f.store.Len())
	})
}

func TestNew_ClampsRefreshThreshold(t *testing.T) {
	t.Parallel()

	f := newFixture(t,
		session.WithLifetime(time.Hour),
		session.WithRefreshThreshold(2*time.Hour),
	)
	ctx := context.Background()

	s, _, err := f.manager.CreateSession(ctx, f.user.ID)
	require.NoError(t, err)

	res, err := f.manager.ValidateSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, res.Cookie)

	f.clock.Advance(10 * time.Minute)
	res, err = f.manager.ValidateSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, res.Cookie, "no rewrite while more than half the lifetime remains")

	f.clock.Advance(25 * time.Minute)
	res, err = f.manager.ValidateSession(ctx, s.ID)
	require.NoError(t, err)
	assert.NotNil(t, res.Cookie)
}

func TestManager_Cookies(t *testing.T) {
	t.Parallel()

	f := newFixture(t,
		session.WithCookieName("sid"),
		session.WithSecure(true),
		session.WithCookieOptions(),
	)

	blank := f.manager.CreateBlankCookie()
	assert.Equal(t, "sid", blank.Name)
	assert.True(t, blank.IsBlank())
	assert.Equal(t, time.Unix(0, 0), blank.Expires)
	assert.True(t, blank.Secure)
	assert.True(t, blank.HttpOnly)

	exp := f.clock.Now().Add(time.Hour)
	c := f.manager.CreateSessionCookie(&session.Session{ID: "abc", ExpiresAt: &exp})
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, 3600, c.MaxAge)
	assert.Equal(t, exp, c.Expires)
}

func TestManager_DeleteExpiredSessions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.manager.CreateSession(ctx, f.user.ID)
	require.NoError(t, err)
	f.clock.Advance(20 * 24 * time.Hour)
	_, _, err = f.manager.CreateSession(ctx, f.user.ID)
	require.NoError(t, err)
	f.clock.Advance(11 * 24 * time.Hour)

	n, err := f.manager.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, f.store.Len())
}

func TestManager_RunCleanup(t *testing.T) {
	t.Parallel()

	t.Run("disabled interval returns immediately", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		done := make(chan struct{})
		go func() {
			f.manager.RunCleanup(context.Background(), 0)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("RunCleanup did not return")
		}
	})

	t.Run("sweeps until canceled", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx, cancel := context.WithCancel(context.Background())

		_, _, err := f.manager.CreateSession(ctx, f.user.ID)
		require.NoError(t, err)
		f.clock.Advance(31 * 24 * time.Hour)

		done := make(chan struct{})
		go func() {
			f.manager.RunCleanup(ctx, 5*time.Millisecond)
			close(done)
		}()

		assert.Eventually(t, func() bool { return f.store.Len() == 0 }, time.Second, 5*time.Millisecond)
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("RunCleanup did not stop")
		}
	})
}
