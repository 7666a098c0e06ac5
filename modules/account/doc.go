// Package account implements email and password signup and login on top of
// the auth and session packages.
//
// Service holds the request logic and knows nothing about HTTP: Signup,
// Login and AuthHelper return an Outcome that either carries field errors or
// a session cookie plus a redirect target. Validation and credential
// failures are data in Outcome.Errors; only infrastructure failures come back
// as errors.
//
// Handler exposes the service over chi routes and renders Views. Form posts
// get HTML with inline errors, JSON posts get the handler JSON envelope.
// WithRateLimiter puts a token bucket in front of the credential routes.
//
//	svc := account.NewService(account.DefaultConfig(),
//	    auth.NewPasswordService(users), sessions,
//	    account.WithLogger(log),
//	)
//	r.Mount("/", account.NewHandler(svc, sessions).Handle())
package account
