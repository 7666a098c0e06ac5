// Package auth implements email/password identity: user records, password
// hashing and credential checks.
//
// Sessions live in package session; this package only answers "who is this
// user" and "do these credentials match".
//
//	users := auth.NewMemoryStorage()
//	svc := auth.NewPasswordService(users, auth.WithBcryptCost(12))
//
//	user, err := svc.Register(ctx, "user@example.com", "secret")
//	switch {
//	case errors.Is(err, auth.ErrEmailAlreadyExists):
//		// show a field error
//	case err != nil:
//		// infrastructure failure
//	}
//
//	user, err = svc.Authenticate(ctx, "user@example.com", "secret")
//	if errors.Is(err, auth.ErrInvalidCredentials) {
//		// unknown email and wrong password are indistinguishable
//	}
//
// # Email normalization
//
// NormalizeEmail trims surrounding whitespace, applies Unicode NFC and
// lower-cases the address. Storage implementations compare normalized
// values, so "User@Example.com" and "user@example.com" are one account.
//
// # Storage
//
// UserStorage is the persistence contract. MemoryStorage ships with the
// package for tests and single-process setups; a Postgres implementation
// lives in internal/storage. Implementations must enforce email uniqueness
// atomically and report conflicts as ErrEmailAlreadyExists.
package auth
