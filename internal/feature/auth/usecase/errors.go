package usecase

import "errors"

var (
	// ErrEmailAlreadyExists is returned when signing up with a taken email.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned for any email/password mismatch.
	// It is deliberately generic to prevent user enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
