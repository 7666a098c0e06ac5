package binder

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
)

// DefaultMaxMemory is the in-memory limit for multipart forms (10MB).
const DefaultMaxMemory = 10 << 20

// Form creates a binder for urlencoded and multipart form bodies.
//
// Supported struct tags:
//   - `form:"name"` binds form field "name"
//   - `form:"-"` skips the field
//
// Fields without a tag bind to their lowercased name. Supported field types
// are strings, integers, floats, bools, slices of those and pointers to them.
func Form() Func {
	return func(r *http.Request, v any) error {
		mediaType, err := requestMediaType(r)
		if err != nil {
			return fmt.Errorf("%w: expected %s or %s", err, MIMEApplicationForm, MIMEMultipartForm)
		}

		var values url.Values

		switch mediaType {
		case MIMEApplicationForm:
			if err := r.ParseForm(); err != nil {
				return fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
			}
			values = r.PostForm

		case MIMEMultipartForm:
			_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || params["boundary"] == "" {
				return fmt.Errorf("%w: missing multipart boundary", ErrFailedToParseForm)
			}
			if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil {
				return fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
			}
			values = url.Values(r.MultipartForm.Value)

		default:
			return fmt.Errorf("%w: got %s, expected %s or %s",
				ErrUnsupportedMediaType, mediaType, MIMEApplicationForm, MIMEMultipartForm)
		}

		return bindToStruct(v, "form", values, ErrFailedToParseForm)
	}
}
