// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound     = errors.New("not found")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrConstraint   = errors.New("constraint violation")

	// Integrity errors.
	ErrCategoryTypeMismatch = errors.New("category does not belong to declared type")
	ErrSubCategoryMismatch  = errors.New("subcategory does not belong to declared category")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IntegrityError reports a cross-record relationship that does not hold,
// for example a category attached to a movement of a different type.
type IntegrityError struct {
	Err        error
	Child      string
	ChildName  string
	Parent     string
	ParentName string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%v: %s %q, %s %q", e.Err, e.Child, e.ChildName, e.Parent, e.ParentName)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// ConstraintKind classifies a storage constraint failure.
type ConstraintKind string

// Constraint kinds raised by the storage layer.
const (
	ConstraintUnique    ConstraintKind = "unique"
	ConstraintRange     ConstraintKind = "range"
	ConstraintProtected ConstraintKind = "protected"
	ConstraintRequired  ConstraintKind = "required"
	ConstraintFormat    ConstraintKind = "format"
)

// ConstraintViolation is returned when a write is rejected by a storage
// constraint. Field names the offending column (or columns, comma separated).
type ConstraintViolation struct {
	Err    error
	Kind   ConstraintKind
	Table  string
	Field  string
	Detail string
}

func (e *ConstraintViolation) Error() string {
	msg := fmt.Sprintf("%s constraint violated on %s.%s", e.Kind, e.Table, e.Field)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ConstraintViolation) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrConstraint) match any violation.
func (e *ConstraintViolation) Is(target error) bool {
	return target == ErrConstraint
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// AsConstraintViolation extracts a ConstraintViolation from err, if any.
func AsConstraintViolation(err error) (*ConstraintViolation, bool) {
	var cv *ConstraintViolation
	if errors.As(err, &cv) {
		return cv, true
	}
	return nil, false
}
