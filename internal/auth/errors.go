package auth

import "errors"

var (
	ErrAccountNotActive       = errors.New("account is not activated")
	ErrInvalidActivationToken = errors.New("activation link is invalid")
	ErrInvalidResetToken      = errors.New("invalid password reset token")
	ErrPasswordTooShort       = errors.New("password must be at least 8 characters long")

	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// ValidationError reports per-field validation failures as a
// field name to message mapping
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "input data validation failed"
}
