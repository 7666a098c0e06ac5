package handler

import (
	"net/http"

	"github.com/dmitrymomot/authflow/pkg/cookie"
)

type cookieResponse struct {
	cookies []cookie.Cookie
	next    Response
}

func (c cookieResponse) Render(w http.ResponseWriter, r *http.Request) error {
	for _, ck := range c.cookies {
		if err := cookie.Write(w, ck); err != nil {
			return err
		}
	}
	return c.next.Render(w, r)
}

// WithCookies sets cookies on the response before rendering next. A cookie
// that fails validation aborts the response with cookie.ErrInvalidCookie.
func WithCookies(next Response, cookies ...cookie.Cookie) Response {
	if len(cookies) == 0 {
		return next
	}
	return cookieResponse{cookies: cookies, next: next}
}
