// Package session manages cookie-based login sessions.
//
// A Session is a server-side record keyed by an opaque random id. The id is
// the only thing the browser holds, in an HttpOnly cookie. The Manager owns
// the lifecycle:
//
//   - CreateSession mints an id, stores the record and returns the cookie to set.
//   - ValidateSession resolves an id to its user and session, extends sessions
//     close to expiry and reports which cookie change the response needs.
//   - InvalidateSession and InvalidateUserSessions remove records.
//   - DeleteExpiredSessions and RunCleanup sweep expired records.
//
// ValidateSession never writes to the response. It returns a Result whose
// Cookie field is nil (leave the cookie alone), a refreshed session cookie,
// or a blank cookie that clears the client. VerifyRequest and Middleware
// apply that decision to an http.ResponseWriter.
//
//	mgr := session.New(store, users,
//		session.WithEnvironment(environment.Production),
//		session.WithLogger(log),
//	)
//
//	r := chi.NewRouter()
//	r.Use(mgr.Middleware)
//	r.With(mgr.RequireAuth).Get("/training", training)
//
// # Stores
//
// Store is the persistence contract. MemoryStore keeps sessions in process,
// RedisStore keeps one JSON value per session with a matching TTL, and
// internal/storage provides a Postgres implementation.
package session
