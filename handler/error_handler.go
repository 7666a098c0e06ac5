package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/authflow/pkg/binder"
	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/requestid"
)

// ErrorPageParams contains data for rendering error pages.
type ErrorPageParams struct {
	Error      string
	StatusCode int
	RequestID  string
	RetryURL   string
}

// ErrorHandlerConfig configures NewErrorHandler.
type ErrorHandlerConfig struct {
	// ErrorPage renders the HTML error page. Plain text is written when nil.
	ErrorPage func(ErrorPageParams) templ.Component
}

// ErrorInfo is the classified form of an error.
type ErrorInfo struct {
	StatusCode int
	Key        string
	Message    string
	LogLevel   slog.Level
}

// classifyError maps err to a status and a client-safe message. Internal
// error text never reaches the client.
func classifyError(err error) ErrorInfo {
	info := ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Key:        ErrInternalServerError.Key,
	}

	var httpErr HTTPError
	var valErr ValidationError

	switch {
	case errors.As(err, &valErr):
		info.StatusCode = ErrUnprocessableEntity.Code
		info.Key = "validation_failed"
	case errors.As(err, &httpErr):
		info.StatusCode = httpErr.Code
		info.Key = httpErr.Key
	case errors.Is(err, binder.ErrMissingContentType), errors.Is(err, binder.ErrUnsupportedMediaType):
		info.StatusCode = ErrUnsupportedMedia.Code
		info.Key = ErrUnsupportedMedia.Key
	case errors.Is(err, binder.ErrFailedToParseJSON), errors.Is(err, binder.ErrFailedToParseForm):
		info.StatusCode = ErrBadRequest.Code
		info.Key = ErrBadRequest.Key
	}

	info.Message = http.StatusText(info.StatusCode)
	if valErr != nil {
		info.Message = valErr.Error()
	}

	info.LogLevel = slog.LevelError
	if info.StatusCode < http.StatusInternalServerError {
		info.LogLevel = slog.LevelWarn
	}

	return info
}

// NewErrorHandler creates the application error handler. It logs every
// failure with the request id, then answers with the JSON error envelope
// when the client speaks JSON and with the configured error page otherwise.
func NewErrorHandler(log *slog.Logger, cfg ErrorHandlerConfig) ErrorHandler[Context] {
	if log == nil {
		log = logger.Discard()
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		w := ctx.ResponseWriter()
		info := classifyError(err)
		reqID := requestid.FromContext(r.Context())

		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.RequestID(reqID),
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		if WantsJSON(r) {
			if rerr := JSONError(err).Render(w, r); rerr != nil {
				log.ErrorContext(r.Context(), "failed to render json error",
					logger.Error(rerr),
					logger.Event("render_error_json"),
				)
			}
			return
		}

		if cfg.ErrorPage == nil {
			http.Error(w, info.Message, info.StatusCode)
			return
		}

		page := cfg.ErrorPage(ErrorPageParams{
			Error:      info.Message,
			StatusCode: info.StatusCode,
			RequestID:  reqID,
			RetryURL:   r.URL.Path,
		})
		if rerr := Templ(page, WithTemplStatus(info.StatusCode)).Render(w, r); rerr != nil {
			log.ErrorContext(r.Context(), "failed to render error page",
				logger.Error(rerr),
				logger.Event("render_error_page"),
			)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}
