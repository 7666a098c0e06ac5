package account_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authflow/modules/account"
	"github.com/dmitrymomot/authflow/pkg/auth"
	"github.com/dmitrymomot/authflow/pkg/cookie"
)

func TestSignup_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		email    string
		password string
		field    string
		message  string
	}{
		{"missing at", "ab.com", "hello", "email", account.MsgInvalidEmail},
		{"empty local part", "@b.com", "hello", "email", account.MsgInvalidEmail},
		{"empty domain", "a@", "hello", "email", account.MsgInvalidEmail},
		{"two characters", "a@b.com", "hi", "password", "Password must be at least 3 characters long"},
		{"padded short password", "a@b.com", "  hi  ", "password", "Password must be at least 3 characters long"},
		{"too long for bcrypt", "a@b.com", strings.Repeat("x", 73), "password", account.MsgPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			out, err := f.svc.Signup(context.Background(), tt.email, tt.password)
			require.NoError(t, err)
			assert.False(t, out.OK())
			assert.Equal(t, tt.message, out.Errors.Get(tt.field))
			assert.Nil(t, out.Cookie)
			assert.Equal(t, 0, f.store.Len(), "no session may be created")

			_, lookupErr := f.users.GetUserByEmail(context.Background(), auth.NormalizeEmail(tt.email))
			assert.ErrorIs(t, lookupErr, auth.ErrUserNotFound, "no user may be created")
		})
	}
}

func TestSignup_ReportsBothFields(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	out, err := f.svc.Signup(context.Background(), "nope", "x")
	require.NoError(t, err)
	assert.True(t, out.Errors.Has("email"))
	assert.True(t, out.Errors.Has("password"))
}

func TestSignup_MinimumLengthBoundary(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	out, err := f.svc.Signup(context.Background(), "three@b.com", "abc")
	require.NoError(t, err)
	assert.True(t, out.OK())
}

func TestSignup_ThenValidate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.Signup(ctx, "a@b.com", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Password must be at least 3 characters long", out.Errors.Get("password"))

	out, err = f.svc.Signup(ctx, "a@b.com", "hello")
	require.NoError(t, err)
	require.True(t, out.OK())
	require.NotNil(t, out.Cookie)
	assert.Equal(t, "/training", out.Redirect)
	assert.Equal(t, "auth_session", out.Cookie.Name)
	assert.True(t, out.Cookie.HttpOnly)

	res, err := f.sessions.ValidateSession(ctx, out.Cookie.Value)
	require.NoError(t, err)
	require.True(t, res.Authenticated())
	assert.Equal(t, out.User.ID, res.User.ID)
	assert.Equal(t, "a@b.com", res.User.Email)
}

func TestSignup_NormalizesEmail(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.Signup(ctx, "  Mixed@Example.COM ", "hello")
	require.NoError(t, err)
	require.True(t, out.OK())
	assert.Equal(t, "mixed@example.com", out.User.Email)

	out, err = f.svc.Signup(ctx, "mixed@example.com", "hello")
	require.NoError(t, err)
	assert.Equal(t, account.MsgEmailTaken, out.Errors.Get("email"))
}

func TestSignup_Concurrent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	const n = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		conflict int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := f.svc.Signup(context.Background(), "race@b.com", "hello")
			assert.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case out.OK():
				ok++
			case out.Errors.Get("email") == account.MsgEmailTaken:
				conflict++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflict)
	assert.Equal(t, 1, f.store.Len())
}

func TestLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, "user@b.com", "correct horse")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		out, err := f.svc.Login(ctx, "USER@b.com", "correct horse")
		require.NoError(t, err)
		require.True(t, out.OK())
		require.NotNil(t, out.Cookie)
		assert.Equal(t, "/training", out.Redirect)
		assert.NotEmpty(t, out.Cookie.Value)
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		unknown, err := f.svc.Login(ctx, "ghost@b.com", "correct horse")
		require.NoError(t, err)
		wrong, err := f.svc.Login(ctx, "user@b.com", "battery staple")
		require.NoError(t, err)

		a, err := json.Marshal(unknown)
		require.NoError(t, err)
		b, err := json.Marshal(wrong)
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
		assert.Equal(t, account.MsgInvalidCredentials, wrong.Errors.Get("email"))
		assert.False(t, wrong.Errors.Has("password"))
	})

	t.Run("shape errors skip the store", func(t *testing.T) {
		out, err := f.svc.Login(ctx, "not-an-email", "")
		require.NoError(t, err)
		assert.Equal(t, account.MsgInvalidEmail, out.Errors.Get("email"))
		assert.Equal(t, account.MsgPasswordRequired, out.Errors.Get("password"))
	})
}

func TestAuthHelper(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.AuthHelper(ctx, account.ParseMode("signup"), "h@b.com", "hello")
	require.NoError(t, err)
	require.True(t, out.OK())

	out, err = f.svc.AuthHelper(ctx, account.ParseMode("LOGIN"), "h@b.com", "hello")
	require.NoError(t, err)
	assert.True(t, out.OK())

	// Unknown modes fall back to signup, which now conflicts.
	out, err = f.svc.AuthHelper(ctx, account.ParseMode("bogus"), "h@b.com", "hello")
	require.NoError(t, err)
	assert.Equal(t, account.MsgEmailTaken, out.Errors.Get("email"))
}

func TestLogout(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.Signup(ctx, "bye@b.com", "hello")
	require.NoError(t, err)
	id := out.Cookie.Value

	out, err = f.svc.Logout(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, out.Cookie)
	assert.True(t, out.Cookie.IsBlank())
	assert.Equal(t, "/", out.Redirect)

	res, err := f.sessions.ValidateSession(ctx, id)
	require.NoError(t, err)
	assert.False(t, res.Authenticated())

	_, err = f.svc.Logout(ctx, id)
	assert.NoError(t, err, "logout is idempotent")

	_, err = f.svc.Logout(ctx, "")
	assert.NoError(t, err)
}

func TestLogoutEverywhere(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Signup(ctx, "many@b.com", "hello")
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "many@b.com", "hello")
	require.NoError(t, err)
	require.Equal(t, 2, f.store.Len())

	out, err := f.svc.LogoutEverywhere(ctx, first.User.ID)
	require.NoError(t, err)
	assert.True(t, out.Cookie.IsBlank())
	assert.Equal(t, 0, f.store.Len())
}

func TestService_InfrastructureFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("store down")

	t.Run("session creation failure is returned", func(t *testing.T) {
		t.Parallel()
		users := auth.NewMemoryStorage()
		sessions := new(MockSessionManager)
		sessions.On("CreateSession", mock.Anything, mock.AnythingOfType("uuid.UUID")).
			Return(nil, cookie.Cookie{}, boom)

		svc := account.NewService(account.DefaultConfig(),
			auth.NewPasswordService(users, auth.WithBcryptCost(bcrypt.MinCost)), sessions)

		_, err := svc.Signup(context.Background(), "x@b.com", "hello")
		assert.ErrorIs(t, err, boom)
		sessions.AssertExpectations(t)
	})

	t.Run("logout failure is returned", func(t *testing.T) {
		t.Parallel()
		sessions := new(MockSessionManager)
		sessions.On("InvalidateSession", mock.Anything, "sid").Return(boom)
		sessions.On("InvalidateUserSessions", mock.Anything, mock.Anything).Return(boom)

		svc := account.NewService(account.DefaultConfig(), nil, sessions)

		_, err := svc.Logout(context.Background(), "sid")
		assert.ErrorIs(t, err, boom)
		_, err = svc.LogoutEverywhere(context.Background(), uuid.New())
		assert.ErrorIs(t, err, boom)
		sessions.AssertNotCalled(t, "CreateBlankCookie")
	})

	t.Run("user storage failure is returned", func(t *testing.T) {
		t.Parallel()
		sessions := new(MockSessionManager)
		svc := account.NewService(account.DefaultConfig(),
			auth.NewPasswordService(brokenUsers{err: boom}, auth.WithBcryptCost(bcrypt.MinCost)), sessions)

		_, err := svc.Signup(context.Background(), "x@b.com", "hello")
		assert.ErrorIs(t, err, boom)
		_, err = svc.Login(context.Background(), "x@b.com", "hello")
		assert.ErrorIs(t, err, boom)
		sessions.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
	})
}

type brokenUsers struct{ err error }

func (b brokenUsers) CreateUser(context.Context, *auth.User) error { return b.err }
func (b brokenUsers) GetUserByID(context.Context, uuid.UUID) (*auth.User, error) {
	return nil, b.err
}
func (b brokenUsers) GetUserByEmail(context.Context, string) (*auth.User, error) {
	return nil, b.err
}
