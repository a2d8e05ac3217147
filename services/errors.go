package services

import (
	"errors"
	"fmt"
)

// Engine error taxonomy. Controllers translate these to HTTP statuses;
// nothing is retried or swallowed inside the services layer.
var (
	// ErrNotCurrentApprover: the actor has no pending approval slot at the
	// form's current step.
	ErrNotCurrentApprover = errors.New("no pending approval for this user at the current step")

	// ErrAlreadyActioned: the actor's approval slot was already decided.
	ErrAlreadyActioned = errors.New("approval has already been actioned")

	// ErrFormClosed: the form is completed or rejected.
	ErrFormClosed = errors.New("form is closed and can no longer be actioned")

	// ErrNoApproversConfigured: a chain step resolved to zero approvers.
	ErrNoApproversConfigured = errors.New("no approvers configured for this step")

	// ErrForbidden: the actor is not allowed to perform the operation.
	ErrForbidden = errors.New("operation not permitted for this user")

	// ErrNotFound: unknown form, template, user or role.
	ErrNotFound = errors.New("record not found")
)

// ValidationError reports a malformed or inconsistent request payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a field-scoped validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
