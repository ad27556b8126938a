package exitcodes

import (
	"errors"

	"coq-sweep/internal/sweep"
)

// Exit codes for coq-sweep
// These codes form the operational contract with scripts and CI
const (
	Success             = 0 // Successful execution
	RuntimeError        = 1 // Any other runtime error
	InvalidConfig       = 2 // Configuration file invalid or missing
	DirectoryUnreadable = 3 // Swept directory could not be listed
	DeletionFailed      = 4 // At least one entry could not be removed
)

// FromError maps a sweep error to its exit code
func FromError(err error) int {
	var failed *sweep.DeletionFailedError
	switch {
	case err == nil:
		return Success
	case errors.Is(err, sweep.ErrDirectoryUnreadable):
		return DirectoryUnreadable
	case errors.As(err, &failed):
		return DeletionFailed
	default:
		return RuntimeError
	}
}
