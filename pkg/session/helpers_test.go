package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authflow/pkg/auth"
	"github.com/dmitrymomot/authflow/pkg/session"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store   *session.MemoryStore
	users   *auth.MemoryStorage
	clock   *testClock
	manager *session.Manager
	user    *auth.User
}

func newFixture(t *testing.T, opts ...session.Option) *fixture {
	t.Helper()

	f := &fixture{
		store: session.NewMemoryStore(),
		users: auth.NewMemoryStorage(),
		clock: newTestClock(),
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("hello"), bcrypt.MinCost)
	require.NoError(t, err)
	f.user = &auth.User{ID: uuid.New(), Email: "a@b.com", PasswordHash: hash, CreatedAt: f.clock.Now()}
	require.NoError(t, f.users.CreateUser(context.Background(), f.user))

	base := []session.Option{
		session.WithClock(f.clock.Now),
		session.WithLifetime(30 * 24 * time.Hour),
		session.WithRefreshThreshold(15 * 24 * time.Hour),
	}
	f.manager = session.New(f.store, f.users, append(base, opts...)...)
	return f
}

// failingStore fails every call with err.
type failingStore struct {
	err error
}

func (s failingStore) Put(context.Context, *session.Session) error { return s.err }
func (s failingStore) Get(context.Context, string) (*session.Session, error) {
	return nil, s.err
}
func (s failingStore) Touch(context.Context, string, *time.Time) error { return s.err }
func (s failingStore) Delete(context.Context, string) error             { return s.err }
func (s failingStore) DeleteByUserID(context.Context, uuid.UUID) error  { return s.err }
func (s failingStore) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, s.err
}

var errStoreDown = errors.New("store down")
