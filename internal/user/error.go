package user

import "errors"

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotConfirmed       = errors.New("email not confirmed")
	ErrInvalidCode        = errors.New("invalid or expired confirmation code")
	ErrUserNotFound       = errors.New("user not found")
	ErrNothingToEdit      = errors.New("no profile fields to update")
	ErrMissingSecret      = errors.New("JWT_SECRET is not set")
	ErrInvalidToken       = errors.New("invalid token")
)
