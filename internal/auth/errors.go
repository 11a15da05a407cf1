package auth

import "errors"

// Failure classes recognised at the HTTP boundary. Handlers map these onto
// status codes; everything else is treated as an internal error.
var (
	ErrMissingToken       = errors.New("authorization token missing")
	ErrInvalidTokenFormat = errors.New("invalid token format")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInsufficientRole   = errors.New("insufficient role")
	ErrServiceUnavailable = errors.New("auth backend unavailable")
)
