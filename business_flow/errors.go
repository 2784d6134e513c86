// Package businessflow contains the core business logic and use cases for lead-capture workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Submission validation errors
	ErrNameRequired    = errors.New("name is required")
	ErrContactRequired = errors.New("contact is required")
	ErrContactInvalid  = errors.New("contact is not a valid email or phone")

	// Lead lookup errors
	ErrLeadNotFound = errors.New("lead not found")

	// Confirmation errors
	ErrConfirmTokenMissing = errors.New("confirmation token is missing")
	ErrConfirmTokenExpired = errors.New("confirmation token has expired")

	// Resend errors
	ErrEmailRequired  = errors.New("email is required")
	ErrResendCooldown = errors.New("resend is in cooldown")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsNameRequired(err error) bool {
	return errors.Is(err, ErrNameRequired)
}

func IsContactRequired(err error) bool {
	return errors.Is(err, ErrContactRequired)
}

func IsContactInvalid(err error) bool {
	return errors.Is(err, ErrContactInvalid)
}

func IsLeadNotFound(err error) bool {
	return errors.Is(err, ErrLeadNotFound)
}

func IsConfirmTokenMissing(err error) bool {
	return errors.Is(err, ErrConfirmTokenMissing)
}

func IsConfirmTokenExpired(err error) bool {
	return errors.Is(err, ErrConfirmTokenExpired)
}

func IsEmailRequired(err error) bool {
	return errors.Is(err, ErrEmailRequired)
}

func IsResendCooldown(err error) bool {
	return errors.Is(err, ErrResendCooldown)
}
