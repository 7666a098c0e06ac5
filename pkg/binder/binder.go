package binder

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
)

const (
	MIMEApplicationJSON = "application/json"
	MIMEApplicationForm = "application/x-www-form-urlencoded"
	MIMEMultipartForm   = "multipart/form-data"
)

// Func binds request data into v.
type Func func(r *http.Request, v any) error

// Bind dispatches to JSON or Form depending on the request Content-Type.
func Bind(r *http.Request, v any) error {
	mediaType, err := requestMediaType(r)
	if err != nil {
		return err
	}

	switch mediaType {
	case MIMEApplicationJSON:
		return JSON()(r, v)
	case MIMEApplicationForm, MIMEMultipartForm:
		return Form()(r, v)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}
}

// IsJSON reports whether the request body is declared as JSON.
func IsJSON(r *http.Request) bool {
	mediaType, err := requestMediaType(r)
	return err == nil && mediaType == MIMEApplicationJSON
}

// requestMediaType returns the lowercased media type without parameters.
func requestMediaType(r *http.Request) (string, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return "", ErrMissingContentType
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		// A malformed parameter should not hide an otherwise valid media type.
		mediaType = contentType
		if idx := strings.IndexByte(contentType, ';'); idx != -1 {
			mediaType = contentType[:idx]
		}
		mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	}

	return mediaType, nil
}
