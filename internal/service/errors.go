package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches every NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller's role may not perform an operation
	// on a document in its current state.
	ErrForbidden = errors.New("forbidden")
)

// NotFoundError reports a missing or soft-deleted document.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError reports an invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// TransitionError reports an action that is not allowed from the current status.
type TransitionError struct {
	Entity string
	Action string
	From   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s %s in status %q", e.Action, e.Entity, e.From)
}

func transition[S ~string](entity, action string, from S) error {
	return &TransitionError{Entity: entity, Action: action, From: string(from)}
}

func forbidden(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrForbidden)
}
