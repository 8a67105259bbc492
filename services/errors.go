package services

import "errors"

// Error kinds surfaced to callers. Every one is recoverable and is reported
// to the user by the HTTP layer; none is retried.
var (
	ErrBikeUnavailable    = errors.New("bike not available")
	ErrInvalidPlan        = errors.New("invalid plan")
	ErrNotFound           = errors.New("not found")
	ErrMissingFields      = errors.New("all fields are required")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrGatewayUnavailable = errors.New("payment temporarily unavailable")
	ErrGateway            = errors.New("payment provider error")
)
