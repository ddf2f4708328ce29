package documents

import (
	"errors"
	"fmt"
)

// ErrAlreadySigned rejects a second signing attempt on the same document.
var ErrAlreadySigned = errors.New("document is already signed")

// ValidationError marks malformed or invalid caller input (400-class).
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundError marks a missing resource, or one the caller may not see.
// Ownership misses are reported identically to genuine misses.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found", e.Resource) }

// MismatchError marks a state inconsistency between caller-supplied data and
// stored data, e.g. uploading against someone else's employee id.
type MismatchError struct {
	Msg string
}

func (e *MismatchError) Error() string { return e.Msg }

// InvariantViolationError marks internal data that contradicts a documented
// invariant. It should never occur in a correctly operating system.
type InvariantViolationError struct {
	Msg string
}

func (e *InvariantViolationError) Error() string { return "invariant violation: " + e.Msg }

// StoreError wraps a record-store failure. "No matching row" is never a
// StoreError; repositories report it as a nil result.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("record store %s failed: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// StorageError wraps an object-store failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("object store %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
