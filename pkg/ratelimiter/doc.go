// Package ratelimiter throttles requests with a token bucket.
//
// A Bucket holds up to Config.Capacity tokens per key and regains
// Config.RefillRate tokens every Config.RefillInterval. Each allowed call
// spends one token; a call that finds the bucket empty is denied and spends
// nothing.
//
//	store := ratelimiter.NewMemoryStore()
//	go store.RunCleanup(ctx, time.Minute)
//
//	limiter, err := ratelimiter.NewBucket(store, cfg)
//	if err != nil {
//		return err
//	}
//	r.With(ratelimiter.Middleware(limiter, ratelimiter.ByClientIP)).Post("/login", login)
//
// Denied requests get 429 with Retry-After unless WithExceededHandler says
// otherwise. Every response carries X-RateLimit-Limit, X-RateLimit-Remaining
// and X-RateLimit-Reset.
//
// MemoryStore keeps buckets in process memory, so each instance of a
// horizontally scaled service counts on its own.
package ratelimiter
