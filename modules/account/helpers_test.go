package account_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authflow/modules/account"
	"github.com/dmitrymomot/authflow/pkg/auth"
	"github.com/dmitrymomot/authflow/pkg/cookie"
	"github.com/dmitrymomot/authflow/pkg/session"
)

type fixture struct {
	users    *auth.MemoryStorage
	store    *session.MemoryStore
	sessions *session.Manager
	svc      *account.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users: auth.NewMemoryStorage(),
		store: session.NewMemoryStore(),
	}
	f.sessions = session.New(f.store, f.users)
	f.svc = account.NewService(account.DefaultConfig(),
		auth.NewPasswordService(f.users, auth.WithBcryptCost(bcrypt.MinCost)),
		f.sessions,
	)
	return f
}

// MockSessionManager is a testify mock of account.SessionManager.
type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) CreateSession(ctx context.Context, userID uuid.UUID) (*session.Session, cookie.Cookie, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(*session.Session)
	return s, args.Get(1).(cookie.Cookie), args.Error(2)
}

func (m *MockSessionManager) CreateBlankCookie() cookie.Cookie {
	return m.Called().Get(0).(cookie.Cookie)
}

func (m *MockSessionManager) InvalidateSession(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessionManager) InvalidateUserSessions(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

var _ account.SessionManager = (*MockSessionManager)(nil)
