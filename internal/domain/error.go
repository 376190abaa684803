package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrOperationFailed    = errors.New("operation failed")

	// Conversation errors
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrJobNotFound         = errors.New("job not found")
	ErrJobIDRequired       = errors.New("JobId is required")
	ErrInvalidTransition   = errors.New("invalid message status transition")
	ErrStreamFailure       = errors.New("generation stream failed")
	ErrPersistenceFailure  = errors.New("conversation store write failed")
	ErrPromptAssembly      = errors.New("prompt assembly failed")
	ErrDispatchFailed      = errors.New("generation task could not be dispatched")
	ErrTaskInProgress      = errors.New("generation task already running")
	ErrRateLimited         = errors.New("rate limited")
)

// InsufficientCreditsError reports the amounts involved in a rejected admission.
type InsufficientCreditsError struct {
	Required  int64
	Available int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("%s: required %d, available %d", ErrInsufficientCredits, e.Required, e.Available)
}

func (e *InsufficientCreditsError) Is(target error) bool { return target == ErrInsufficientCredits }

// StreamError wraps a generation source or transport failure observed while
// consuming fragments.
type StreamError struct {
	Fragments int
	Err       error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("%s after %d fragment(s): %v", ErrStreamFailure, e.Fragments, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

func (e *StreamError) Is(target error) bool { return target == ErrStreamFailure }
