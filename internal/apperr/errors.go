// Package apperr defines the sentinel errors shared across lotpad packages.
// Callers match them with errors.Is; producers wrap them with context.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrInvalidName rejects file names that are empty or leave the store root.
	ErrInvalidName = errors.New("invalid file name")

	// ErrInvalidTransition reports an editor operation whose precondition
	// does not hold, e.g. opening a file without a name.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrPromptCancelled is returned when the user declines to supply a
	// file name. It is not a failure; state is left untouched.
	ErrPromptCancelled = errors.New("prompt cancelled")

	ErrPersistence = errors.New("persistence failure")

	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrUnderflow        = errors.New("underflow")
)
