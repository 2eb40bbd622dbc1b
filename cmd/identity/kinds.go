package identity

import "errors"

// Sentinel error kinds (stable for errors.Is and for mapping to API errors).
var (
	ErrInvalidInput       = errors.New("invalid_input")
	ErrNotFound           = errors.New("not_found")
	ErrConflict           = errors.New("conflict")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrForbidden          = errors.New("forbidden")
)
