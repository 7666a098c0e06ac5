// Package clientip resolves the address a request came from.
//
// Forwarding headers are only honoured when named explicitly: behind no
// proxy they are client-controlled, and trusting them would let anyone pick
// their own rate limit bucket.
//
//	r.Use(clientip.Middleware("CF-Connecting-IP", "X-Forwarded-For"))
//	ip := clientip.FromContext(ctx)
package clientip

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Config lists the request headers trusted to carry the client address, in
// priority order. Empty means RemoteAddr only.
type Config struct {
	TrustedHeaders []string `env:"HTTP_TRUSTED_IP_HEADERS" envSeparator:","`
}

// FromRequest returns the first valid address found in the trusted headers,
// then RemoteAddr. X-Forwarded-For style lists yield their first valid
// entry. The result is empty when nothing parses.
func FromRequest(r *http.Request, trusted ...string) string {
	for _, name := range trusted {
		value := r.Header.Get(name)
		if value == "" {
			continue
		}
		for part := range strings.SplitSeq(value, ",") {
			if ip := parse(part); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parse(r.RemoteAddr)
	}
	return parse(host)
}

func parse(s string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return addr.Unmap().String()
}

type contextKey struct{}

func WithContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}

// Middleware stores the resolved address in the request context.
func Middleware(trusted ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithContext(r.Context(), FromRequest(r, trusted...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggerExtractor adds client_ip to log records made with a request context.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		ip := FromContext(ctx)
		if ip == "" {
			return slog.Attr{}, false
		}
		return slog.String("client_ip", ip), true
	}
}
