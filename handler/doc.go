// Package handler turns typed request handlers into http.HandlerFunc values.
//
// A handler receives a Context and a bound request value and returns a
// Response. Wrap runs the configured binder, calls the handler and renders
// the result; any error along the way goes to the ErrorHandler.
//
//	type loginRequest struct {
//	    Email    string `json:"email" form:"email"`
//	    Password string `json:"password" form:"password"`
//	}
//
//	h := handler.HandlerFunc[handler.Context, loginRequest](
//	    func(ctx handler.Context, req loginRequest) handler.Response {
//	        return handler.Redirect("/training")
//	    },
//	)
//
//	r.Post("/login", handler.Wrap(h, handler.WithBinder[handler.Context, loginRequest](binder.Bind)))
//
// # Responses
//
//   - JSON and JSONError write the {"data", "meta", "error"} envelope.
//   - Templ renders an a-h/templ component as HTML with an optional status.
//   - Redirect issues a 303 See Other.
//   - Empty writes only a status code.
//   - WithCookies sets cookies before delegating to another Response.
//
// # Errors
//
// HTTPError carries a status code and a machine-readable key. ValidationError
// maps field names to messages and renders as 422. NewErrorHandler logs each
// failure with the request id and answers with JSON or an HTML page
// depending on what the client sent.
package handler
