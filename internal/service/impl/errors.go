package impl

import "errors"

var (
	ErrEmptyPassword   = errors.New("empty password")
	ErrEmptyCredential = errors.New("empty credential(s)")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyEmail      = errors.New("empty email")
	ErrPasswordLength  = errors.New("password too long")
	ErrGuestType       = errors.New("unknown guest type")
	ErrGuestCount      = errors.New("number of guests must be at least 1")
	ErrCeremonyType    = errors.New("unknown ceremony type")
	ErrRSVP            = errors.New("unknown response")
)
