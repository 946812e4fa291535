package httpx

import "errors"

// Sentinel errors for the domain layer. Repositories signal not-found through
// ErrNotFound rather than empty returns or panics.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation failed")
)
