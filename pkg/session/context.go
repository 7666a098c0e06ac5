package session

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/authflow/pkg/auth"
	"github.com/dmitrymomot/authflow/pkg/logger"
)

type resultContextKey struct{}

// WithResult stores a validation result in ctx.
func WithResult(ctx context.Context, r Result) context.Context {
	return context.WithValue(ctx, resultContextKey{}, r)
}

// ResultFromContext returns the result stored by Middleware.
func ResultFromContext(ctx context.Context) (Result, bool) {
	r, ok := ctx.Value(resultContextKey{}).(Result)
	return r, ok
}

// FromContext returns the authenticated session, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	r, ok := ResultFromContext(ctx)
	if !ok || !r.Authenticated() {
		return nil, false
	}
	return r.Session, true
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*auth.User, bool) {
	r, ok := ResultFromContext(ctx)
	if !ok || !r.Authenticated() {
		return nil, false
	}
	return r.User, true
}

// LoggerExtractor adds the authenticated user id to log records.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		user, ok := UserFromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return logger.UserID(user.ID.String()), true
	}
}
