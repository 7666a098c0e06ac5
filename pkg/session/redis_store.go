package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "session:"

// RedisStore keeps each session as a JSON value whose TTL matches the
// session expiry, plus a set per user for DeleteByUserID. Redis evicts
// expired keys itself, so DeleteExpired reports zero.
//
// The per-user set has no TTL: it must outlive every member, and members
// can expire in any order. Put prunes members whose session key is gone.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

type RedisOption func(*RedisStore)

// WithRedisPrefix sets the key prefix. Default is "session:".
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: defaultRedisPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type redisSession struct {
	UserID    uuid.UUID  `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Fresh     bool       `json:"fresh"`
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisStore) userKey(userID uuid.UUID) string {
	return r.prefix + "user:" + userID.String()
}

// ttl converts an expiry to a Redis TTL. Zero means no TTL. The bool is
// false when the expiry has already passed.
func (r *RedisStore) ttl(expiresAt *time.Time) (time.Duration, bool) {
	if expiresAt == nil {
		return 0, true
	}
	d := expiresAt.Sub(r.now())
	if d <= 0 {
		return 0, false
	}
	return d, true
}

func (r *RedisStore) Put(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return ErrInvalidSession
	}
	ttl, ok := r.ttl(s.ExpiresAt)
	if !ok {
		return ErrSessionExpired
	}

	data, err := json.Marshal(redisSession{
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		Fresh:     s.Fresh,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	key := r.key(s.ID)
	created, err := r.client.SetNX(ctx, key, data, ttl).Result()
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	if !created {
		return ErrDuplicateID
	}

	userKey := r.userKey(s.UserID)
	if err := r.client.SAdd(ctx, userKey, s.ID).Err(); err != nil {
		// An unindexed session would survive DeleteByUserID.
		if delErr := r.client.Del(context.WithoutCancel(ctx), key).Err(); delErr != nil {
			return errors.Join(fmt.Errorf("index session: %w", err), fmt.Errorf("rollback session: %w", delErr))
		}
		return fmt.Errorf("index session: %w", err)
	}

	// Stale members are harmless to DeleteByUserID; a failed prune is retried
	// on the next Put.
	_ = r.prune(ctx, userKey, s.ID)
	return nil
}

// prune removes set members whose session key no longer exists.
func (r *RedisStore) prune(ctx context.Context, userKey, keep string) error {
	ids, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return err
	}

	exists := make(map[string]*redis.IntCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			if id != keep {
				exists[id] = pipe.Exists(ctx, r.key(id))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	var stale []any
	for id, cmd := range exists {
		if cmd.Val() == 0 {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	return r.client.SRem(ctx, userKey, stale...).Err()
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var rs redisSession
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &Session{
		ID:        id,
		UserID:    rs.UserID,
		CreatedAt: rs.CreatedAt,
		ExpiresAt: rs.ExpiresAt,
		Fresh:     rs.Fresh,
	}, nil
}

func (r *RedisStore) Touch(ctx context.Context, id string, expiresAt *time.Time) error {
	s, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	ttl, ok := r.ttl(expiresAt)
	if !ok {
		return r.Delete(ctx, id)
	}

	data, err := json.Marshal(redisSession{
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: expiresAt,
		Fresh:     false,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	// XX keeps a concurrent Delete from being undone.
	err = r.client.SetArgs(ctx, r.key(id), data, redis.SetArgs{Mode: "XX", TTL: ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	s, err := r.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key(id))
		pipe.SRem(ctx, r.userKey(s.UserID), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *RedisStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	userKey := r.userKey(userID)

	ids, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, r.key(id))
	}
	keys = append(keys, userKey)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

func (r *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, ctx.Err()
}
