package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation references a round ID that
	// does not exist in the collection.
	ErrNotFound = errors.New("round not found")

	// ErrSyncInProgress is returned when a sync cycle is requested while
	// another cycle is already in flight. The request is dropped, not queued.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrRecoveryExhausted is returned when neither the full nor the
	// emergency backup holds recoverable data. This is a normal terminal
	// outcome of recovery, not an exceptional one.
	ErrRecoveryExhausted = errors.New("no recoverable backup")
)

// ValidationError reports a round input field outside its domain constraints.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError reports a failed local write. Backup snapshots are still
// attempted best-effort when one occurs.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// TransportError reports a failed remote fetch or put. It degrades sync to
// local-only for the cycle and is surfaced as engine status, never as a hard
// failure on the mutation path.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failed: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
