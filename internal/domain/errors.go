package domain

import "fmt"

// Error types for consistent error handling across the fund backend.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrBusinessRule indicates the operation violates a fund rule. The message
// is operator-facing and shown verbatim in the admin UI.
type ErrBusinessRule struct {
	Message string
}

func (e *ErrBusinessRule) Error() string {
	return e.Message
}

// ErrConfirmationRequired indicates the payment needs an explicit operator
// confirmation before it is written. Decision carries the computed split so
// the UI can render the confirmation dialog.
type ErrConfirmationRequired struct {
	Decision *Decision
}

func (e *ErrConfirmationRequired) Error() string {
	return "confirmation required before posting"
}

// ErrStaleState indicates the member snapshot was modified between read and
// write. The caller should re-read and retry.
type ErrStaleState struct {
	Resource string
	ID       string
}

func (e *ErrStaleState) Error() string {
	return fmt.Sprintf("stale state for %s %s, re-read and retry", e.Resource, e.ID)
}

// ErrInconsistentState indicates a multi-record write failed partway. Records
// written before the failure remain; the operator must reconcile manually.
type ErrInconsistentState struct {
	Operation string
	Err       error
}

func (e *ErrInconsistentState) Error() string {
	return fmt.Sprintf("inconsistent state after partial write in %s: %v", e.Operation, e.Err)
}

func (e *ErrInconsistentState) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}
