// Package common defines shared constants and sentinel errors used across
// client layers of WhatTheNote. Callers should use errors.Is / errors.As to
// match these values.
package common

import "errors"

var (
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation error")

	ErrNotFound = errors.New("not found")
)

// ValidationError reports input rejected locally, before any request is
// sent. Message is user-facing.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
