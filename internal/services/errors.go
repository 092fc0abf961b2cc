package services

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateIdentity    = errors.New("username or email already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrInvalidSecondFactor  = errors.New("invalid verification code")
	ErrPendingLoginExpired  = errors.New("login challenge expired")
	ErrTwoFactorNotEnrolled = errors.New("two-factor authentication is not set up")
	ErrUnauthorized         = errors.New("access denied")
	ErrNotFound             = errors.New("record not found")
)

// AccountLockedError reports how long the caller must wait before the
// password will be checked again.
type AccountLockedError struct {
	RemainingMinutes int
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minute(s)", e.RemainingMinutes)
}

// ValidationError carries a user-facing message about a rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
