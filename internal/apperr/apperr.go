// Package apperr defines the error kinds shared by the calendar services and
// the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError is a locally detected input error. No collaborator call is
// made when one is returned.
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

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// CollaboratorError wraps a failure reported by the persistence or auth
// collaborator.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Collaborator wraps err as a CollaboratorError, or returns nil.
func Collaborator(op string, err error) error {
	if err == nil {
		return nil
	}
	return &CollaboratorError{Op: op, Err: err}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsCollaborator reports whether err is or wraps a CollaboratorError.
func IsCollaborator(err error) bool {
	var c *CollaboratorError
	return errors.As(err, &c)
}
