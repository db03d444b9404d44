package model

import "fmt"

// ValidationError reports a request rejected before any round trip to the
// store: an unknown event name, an invalid flag value, a malformed filter.
// It enables typed discrimination via errors.As.
type ValidationError struct {
	Field  string // what was being validated (e.g. "event_name", "flag")
	Value  string // the offending value
	Reason string // human-readable rejection reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// NotFoundError reports a project or task absent from the store.
// Surfaced from the store boundary; never retried.
type NotFoundError struct {
	Kind string // "project", "task", "resource"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// TransportError reports a network or store failure. Calls are best-effort
// single attempts; the failure is surfaced to the user without retry.
type TransportError struct {
	Op  string // the operation that failed (e.g. "aggregate tasks")
	Err error  // underlying cause
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ConflictError reports a mutation rejected locally because another mutation
// on the same task is still outstanding. The request is never sent.
type ConflictError struct {
	TaskID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("mutation already pending for task %s", e.TaskID)
}
