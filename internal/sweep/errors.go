package sweep

import (
	"errors"
	"fmt"
)

// ErrDirectoryUnreadable is returned when the swept directory cannot be listed
var ErrDirectoryUnreadable = errors.New("directory unreadable")

// DeletionFailedError reports an entry that could not be removed
type DeletionFailedError struct {
	Entry string
	Cause error
}

// Error names the entry and the underlying cause
func (e *DeletionFailedError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Entry, e.Cause)
}

// Unwrap exposes the cause to errors.Is and errors.As
func (e *DeletionFailedError) Unwrap() error {
	return e.Cause
}

func directoryUnreadable(dir string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrDirectoryUnreadable, dir, cause)
}
