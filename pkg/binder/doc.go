// Package binder decodes HTTP request bodies into Go structs.
//
// Three binders are provided:
//
//   - JSON binds application/json bodies. Unknown fields and trailing data are
//     rejected and the body is capped at DefaultMaxJSONSize.
//   - Form binds application/x-www-form-urlencoded and multipart/form-data
//     bodies using the `form` struct tag.
//   - Bind picks one of the above from the request Content-Type.
//
// String values are stored exactly as received. Callers that need trimming
// or normalization do it themselves, since credential fields must reach the
// hasher byte for byte.
//
// # Usage
//
//	type credentials struct {
//	    Email    string `json:"email" form:"email"`
//	    Password string `json:"password" form:"password"`
//	}
//
//	var req credentials
//	if err := binder.Bind(r, &req); err != nil {
//	    // errors.Is(err, binder.ErrUnsupportedMediaType) etc.
//	}
//
// # Errors
//
// Every failure wraps one of ErrMissingContentType, ErrUnsupportedMediaType,
// ErrFailedToParseJSON or ErrFailedToParseForm.
package binder
