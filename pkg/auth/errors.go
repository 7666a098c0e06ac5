package auth

import "errors"

var (
	ErrUserNotFound       = errors.New("auth.user_not_found")
	ErrEmailAlreadyExists = errors.New("auth.email_already_exists")
	ErrInvalidCredentials = errors.New("auth.invalid_credentials")
	ErrPasswordTooLong    = errors.New("auth.password_too_long")
)
