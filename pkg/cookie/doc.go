// Package cookie builds and transports HTTP cookie descriptors.
//
// A Cookie is a plain value describing a Set-Cookie header. Producers such
// as the session manager build descriptors without touching the response;
// the HTTP layer decides when to Write them. This keeps cookie logic
// testable without an http.ResponseWriter.
//
//	m := cookie.New("auth_session", cookie.WithSecure(true))
//	c := m.Issue(sessionID, cookie.WithMaxAge(3600))
//	if err := cookie.Write(w, c); err != nil {
//		// invalid name or value
//	}
//
// Values are stored as-is. Signing and encryption are out of scope: the
// values written by this module are opaque random tokens.
package cookie
