package session

import (
	"net/http"

	"github.com/dmitrymomot/authflow/pkg/cookie"
	"github.com/dmitrymomot/authflow/pkg/logger"
)

// VerifyRequest validates the session cookie on r and writes whatever cookie
// change the result asks for. Requests without the cookie, or with an empty
// value, are unauthenticated and never reach the store.
//
// A cookie that cannot be written is logged and otherwise ignored; the
// result is still returned.
func (m *Manager) VerifyRequest(w http.ResponseWriter, r *http.Request) (Result, error) {
	id, err := m.cookies.Read(r)
	if err != nil || id == "" {
		return Result{}, nil
	}

	res, err := m.ValidateSession(r.Context(), id)
	if err != nil {
		return Result{}, err
	}

	if res.Cookie != nil {
		if err := cookie.Write(w, *res.Cookie); err != nil {
			m.logger.WarnContext(r.Context(), "failed to write session cookie",
				logger.Error(err),
				logger.Component("session"),
			)
		}
	}

	return res, nil
}

// Middleware verifies the session on every request and stores the Result
// in the request context. Store failures are logged and the request
// continues unauthenticated.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := m.VerifyRequest(w, r)
		if err != nil {
			m.logger.ErrorContext(r.Context(), "session verification failed",
				logger.Error(err),
				logger.Component("session"),
			)
			res = Result{}
		}
		next.ServeHTTP(w, r.WithContext(WithResult(r.Context(), res)))
	})
}

// RequireAuth redirects unauthenticated requests to the login path. It reuses
// the Result from Middleware when present and verifies the request itself
// otherwise.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := ResultFromContext(r.Context())
		if !ok {
			var err error
			res, err = m.VerifyRequest(w, r)
			if err != nil {
				m.logger.ErrorContext(r.Context(), "session verification failed",
					logger.Error(err),
					logger.Component("session"),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
		}

		if !res.Authenticated() {
			http.Redirect(w, r, m.loginPath, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithResult(r.Context(), res)))
	})
}
