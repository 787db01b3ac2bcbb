package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEventNotFound is returned when an event does not exist in the store.
	ErrEventNotFound = errors.New("event not found")
	// ErrUserNotFound is returned when a user does not exist in the store.
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyRegistered is returned on a duplicate registration attempt for the same event.
	ErrAlreadyRegistered = errors.New("already registered for this event")
	// ErrConfirmationRequired is returned when an event deletion is attempted without
	// the explicit confirmation acknowledgement.
	ErrConfirmationRequired = errors.New("deletion requires confirmation")
	// ErrImageLimit is returned when attaching a fourth image to an event.
	ErrImageLimit = errors.New("an event can hold at most 3 images")
	// ErrNotRegisterable is returned when registering for an informational-only category.
	ErrNotRegisterable = errors.New("event category does not accept registrations")
)

// PermissionError is returned when the acting user's role or ownership does not
// satisfy a transition's guard. The operation is aborted before any write attempt.
type PermissionError struct {
	Actor  string
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s is not permitted to %s", e.Actor, e.Action)
}

// FieldError describes a single invalid field.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

// ValidationError aggregates field errors for a create or edit request.
// No partial write happens when it is returned.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		msgs[i] = fe.Error()
	}

	return "validation failed: " + strings.Join(msgs, "; ")
}

// BackendUnavailableError wraps a failed collaborator call. The user retries
// manually; no automatic retry is performed.
type BackendUnavailableError struct {
	Op  string
	Err error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("backend unavailable during %s: %v", e.Op, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// SchedulingError marks a reminder scheduling failure after a successful
// registration. It is logged, never surfaced, and never rolls the registration back.
type SchedulingError struct {
	EventID string
	Err     error
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("failed to schedule reminders for event %s: %v", e.EventID, e.Err)
}

func (e *SchedulingError) Unwrap() error { return e.Err }
