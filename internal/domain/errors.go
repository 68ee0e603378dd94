package domain

import "errors"

var (
	// auth boundary
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")

	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("a guest with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("not found")

	// integrity
	ErrCorruptCredential = errors.New("corrupt credential")
	ErrInvalidToken      = errors.New("invalid token")

	ErrStorageUnavailable = errors.New("storage unavailable")
)
