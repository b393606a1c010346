package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both missing records and records owned by someone
	// else; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("record not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError is rejected input. Controllers map it to a 400 before
// anything is persisted.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

func invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
