package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals a value that does not satisfy its declaration.
	ErrValidation = errors.New("validation failed")
	// ErrUnknownModel signals a model name outside the declared model list.
	ErrUnknownModel = errors.New("unknown model")
)

// ValidationError names the offending field, the rejected value and, for
// enumerations, the allowed set.
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
	// Reason replaces the allowed-set message when the constraint is not an enum.
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("invalid %s %q: must be one of [%s]", e.Field, e.Value, strings.Join(e.Allowed, " "))
	}
	reason := e.Reason
	if reason == "" {
		reason = "invalid value"
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewEnumError reports a value outside a closed enumeration.
func NewEnumError(field, value string, allowed []string) error {
	return &ValidationError{Field: field, Value: value, Allowed: allowed}
}

// NewValidationError reports a value that fails a non-enum constraint.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
