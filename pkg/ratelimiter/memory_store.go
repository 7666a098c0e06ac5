package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type bucketState struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu         sync.Mutex
	buckets    map[string]*bucketState
	now        func() time.Time
	staleAfter time.Duration
}

type MemoryStoreOption func(*MemoryStore)

func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStaleAfter sets how long an untouched bucket survives a sweep.
// Default is one hour.
func WithStaleAfter(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if d > 0 {
			s.staleAfter = d
		}
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		buckets:    make(map[string]*bucketState),
		now:        time.Now,
		staleAfter: time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) ConsumeTokens(_ context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucketState{tokens: cfg.Capacity, lastRefill: now}
		s.buckets[key] = b
	}
	b.lastAccess = now

	if steps := int64(now.Sub(b.lastRefill) / cfg.RefillInterval); steps > 0 {
		// Past this many steps the bucket is full anyway; also keeps the
		// multiplication below from overflowing.
		full := int64(cfg.Capacity/cfg.RefillRate + 1)
		if steps >= full {
			b.tokens = cfg.Capacity
			b.lastRefill = now
		} else {
			b.tokens = min(b.tokens+int(steps)*cfg.RefillRate, cfg.Capacity)
			b.lastRefill = b.lastRefill.Add(time.Duration(steps) * cfg.RefillInterval)
		}
	}

	resetAt := b.lastRefill.Add(cfg.RefillInterval)
	if b.tokens < tokens {
		return b.tokens - tokens, resetAt, nil
	}
	b.tokens -= tokens
	return b.tokens, resetAt, nil
}

// Sweep drops buckets untouched for longer than the stale period and
// returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.staleAfter)
	removed := 0
	for key, b := range s.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// RunCleanup calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}
