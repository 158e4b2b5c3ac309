package domain

import "errors"

// Errors shared by every service. Tenant mismatches are reported as ErrNotFound so
// that callers cannot probe other tenants' ids.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("already exists")
	ErrUnavailable        = errors.New("storage unavailable")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
