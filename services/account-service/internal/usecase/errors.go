package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrNameMismatch       = errors.New("name does not match our records for this email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOTPExpired         = errors.New("otp has expired")
	ErrInvalidOTP         = errors.New("invalid otp")
	ErrOTPAlreadyUsed     = errors.New("otp has already been used")
	ErrDeliveryFailed     = errors.New("failed to deliver email")
	ErrBlobStoreDisabled  = errors.New("image storage is not configured")
)

// ValidationError carries a user-safe description of rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
