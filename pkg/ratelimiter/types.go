package ratelimiter

import (
	"context"
	"time"
)

// Config describes one token bucket. A zero Capacity means "no limit" to
// callers that check Enabled.
type Config struct {
	Capacity       int           `env:"AUTH_RATELIMIT_CAPACITY" envDefault:"10"`
	RefillRate     int           `env:"AUTH_RATELIMIT_REFILL_RATE" envDefault:"1"`
	RefillInterval time.Duration `env:"AUTH_RATELIMIT_REFILL_INTERVAL" envDefault:"30s"`
}

// Enabled reports whether the bucket limits anything.
func (c Config) Enabled() bool {
	return c.Capacity > 0
}

func (c Config) validate() error {
	if c.Capacity <= 0 || c.RefillRate <= 0 || c.RefillInterval <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Result is the outcome of one Allow call.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Allowed is false when the bucket did not hold enough tokens.
func (r Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is the wait until the next refill, or zero for an allowed call.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(r.ResetAt.Sub(now), 0)
}

// Store keeps bucket state. ConsumeTokens refills the bucket for the time
// passed, then spends tokens only if enough are available. A negative
// remaining value signals a denied call.
type Store interface {
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (remaining int, resetAt time.Time, err error)
}

// Limiter is what Middleware needs from a Bucket.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}
