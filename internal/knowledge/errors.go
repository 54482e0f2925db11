package knowledge

import (
	"errors"
	"fmt"
)

// Sentinel errors for knowledge store operations.
var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("knowledge store is closed")

	// ErrInvalidConfig indicates invalid matcher or backend configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError reports a missing or out-of-range caller argument.
// It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Phase distinguishes reads from writes in a StorageError.
type Phase string

const (
	// PhaseRead failures left no effect and are safe to retry.
	PhaseRead Phase = "read"
	// PhaseWrite failures have unknown effect; the caller decides whether to retry.
	PhaseWrite Phase = "write"
)

// StorageError wraps an underlying persistence failure.
type StorageError struct {
	Op    string
	Phase Phase
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed (%s): %v", e.Op, e.Phase, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failed operation can be retried without
// caller remediation.
func (e *StorageError) Retryable() bool {
	return e.Phase == PhaseRead
}

func readError(op string, err error) error {
	return &StorageError{Op: op, Phase: PhaseRead, Err: err}
}

func writeError(op string, err error) error {
	return &StorageError{Op: op, Phase: PhaseWrite, Err: err}
}
