package auth

import "errors"

var (
	ErrUnauthorized = errors.New("auth: unauthorized")
	ErrForbidden    = errors.New("auth: forbidden")
	// ErrTenantMismatch indicates a statement belongs to a different tenant.
	ErrTenantMismatch = errors.New("auth: tenant mismatch")
)
