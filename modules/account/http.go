package account

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/authflow/handler"
	"github.com/dmitrymomot/authflow/pkg/binder"
	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/ratelimiter"
	"github.com/dmitrymomot/authflow/pkg/session"
)

// Handler exposes Service over HTTP.
type Handler struct {
	svc          *Service
	sessions     *session.Manager
	views        Views
	logger       *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
	limiter      ratelimiter.Limiter
	limitKey     ratelimiter.KeyFunc
}

type HandlerOption func(*Handler)

func WithViews(v Views) HandlerOption {
	return func(h *Handler) {
		h.views = v
	}
}

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func WithErrorHandler(eh handler.ErrorHandler[handler.Context]) HandlerOption {
	return func(h *Handler) {
		h.errorHandler = eh
	}
}

// WithRateLimiter throttles the credential endpoints (/auth, /signup,
// /login). A nil key defaults to the client IP.
func WithRateLimiter(l ratelimiter.Limiter, key ratelimiter.KeyFunc) HandlerOption {
	return func(h *Handler) {
		h.limiter = l
		h.limitKey = key
	}
}

func NewHandler(svc *Service, sessions *session.Manager, opts ...HandlerOption) *Handler {
	h := &Handler{
		svc:      svc,
		sessions: sessions,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.views = h.views.withDefaults()
	if h.errorHandler == nil {
		h.errorHandler = handler.NewErrorHandler(h.logger, handler.ErrorHandlerConfig{ErrorPage: h.views.ErrorPage})
	}
	return h
}

// Handle returns the account routes. Every route sees the session
// middleware; /training and /logout/all require a session.
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(h.sessions.Middleware)
	r.NotFound(h.fail(handler.ErrNotFound))
	r.MethodNotAllowed(h.fail(handler.ErrMethodNotAllowed))

	r.Get("/", wrap(h, h.authPage, nil))
	r.Post("/logout", wrap(h, h.logout, nil))

	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.throttle())
		}
		r.Post("/auth", wrap(h, h.auth, binder.Bind))
		r.Post("/signup", wrap(h, h.signup, binder.Bind))
		r.Post("/login", wrap(h, h.login, binder.Bind))
	})

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.RequireAuth)
		r.Get("/training", wrap(h, h.training, nil))
		r.Post("/logout/all", wrap(h, h.logoutEverywhere, nil))
	})

	return r
}

// throttle renders over-limit requests through the error handler.
func (h *Handler) throttle() func(http.Handler) http.Handler {
	key := h.limitKey
	if key == nil {
		key = ratelimiter.ByClientIP
	}
	return ratelimiter.Middleware(h.limiter, key,
		ratelimiter.WithExceededHandler(func(w http.ResponseWriter, r *http.Request, _ ratelimiter.Result) {
			h.fail(handler.ErrTooManyRequests)(w, r)
		}),
		ratelimiter.WithStoreErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			h.errorHandler(handler.NewContext(w, r), err)
		}),
	)
}

// fail renders err through the error handler.
func (h *Handler) fail(err error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.errorHandler(handler.NewContext(w, r), err)
	}
}

func wrap[R any](h *Handler, fn func(handler.Context, R) handler.Response, bind handler.Bind) http.HandlerFunc {
	opts := []handler.WrapOption[handler.Context, R]{
		handler.WithErrorHandler[handler.Context, R](h.errorHandler),
	}
	if bind != nil {
		opts = append(opts, handler.WithBinder[handler.Context, R](bind))
	}
	return handler.Wrap(handler.HandlerFunc[handler.Context, R](fn), opts...)
}

// AuthRequest carries credentials from a form or JSON body. Mode is only
// read by POST /auth.
type AuthRequest struct {
	Mode     string `json:"mode" form:"mode"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type pageRequest struct{}

func (h *Handler) authPage(ctx handler.Context, _ pageRequest) handler.Response {
	if _, ok := session.UserFromContext(ctx); ok {
		return handler.Redirect(h.svc.cfg.SuccessRedirect)
	}
	mode := ParseMode(ctx.Request().URL.Query().Get("mode"))
	return handler.Templ(h.views.AuthPage(AuthPageParams{Mode: mode}))
}

func (h *Handler) auth(ctx handler.Context, req AuthRequest) handler.Response {
	mode := ParseMode(req.Mode)
	out, err := h.svc.AuthHelper(ctx, mode, req.Email, req.Password)
	return h.respond(ctx, mode, req.Email, out, err)
}

func (h *Handler) signup(ctx handler.Context, req AuthRequest) handler.Response {
	out, err := h.svc.Signup(ctx, req.Email, req.Password)
	return h.respond(ctx, ModeSignup, req.Email, out, err)
}

func (h *Handler) login(ctx handler.Context, req AuthRequest) handler.Response {
	out, err := h.svc.Login(ctx, req.Email, req.Password)
	return h.respond(ctx, ModeLogin, req.Email, out, err)
}

func (h *Handler) logout(ctx handler.Context, _ pageRequest) handler.Response {
	var id string
	if s, ok := session.FromContext(ctx); ok {
		id = s.ID
	}
	out, err := h.svc.Logout(ctx, id)
	return h.respond(ctx, ModeLogin, "", out, err)
}

func (h *Handler) logoutEverywhere(ctx handler.Context, _ pageRequest) handler.Response {
	user, ok := session.UserFromContext(ctx)
	if !ok {
		return handler.Error(handler.ErrUnauthorized)
	}
	out, err := h.svc.LogoutEverywhere(ctx, user.ID)
	return h.respond(ctx, ModeLogin, "", out, err)
}

func (h *Handler) training(ctx handler.Context, _ pageRequest) handler.Response {
	user, _ := session.UserFromContext(ctx)
	return handler.Templ(h.views.TrainingPage(TrainingPageParams{User: user}))
}

// respond turns an Outcome into a response. Field errors re-render the form
// with 422, or become the JSON error envelope; success sets the cookie and
// redirects, or returns the redirect target as JSON data.
func (h *Handler) respond(ctx handler.Context, mode Mode, email string, out Outcome, err error) handler.Response {
	if err != nil {
		return handler.Error(err)
	}

	asJSON := handler.WantsJSON(ctx.Request())

	if !out.OK() {
		if asJSON {
			return handler.JSONError(out.Errors)
		}
		return handler.Templ(
			h.views.AuthPage(AuthPageParams{Mode: mode, Email: email, Errors: out.Errors}),
			handler.WithTemplStatus(http.StatusUnprocessableEntity),
		)
	}

	var resp handler.Response
	if asJSON {
		resp = handler.JSON(map[string]string{"redirect": out.Redirect})
	} else {
		resp = handler.Redirect(out.Redirect)
	}
	if out.Cookie == nil {
		return resp
	}
	return handler.WithCookies(resp, *out.Cookie)
}
