package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingProjectRoot is returned when no project root is configured
	ErrMissingProjectRoot = errors.New("project root is required")

	// ErrUpdateFailed is returned when a pipeline stage fails and the update is aborted
	ErrUpdateFailed = errors.New("update failed")
)

// IsUpdateFailedError checks if the error is or wraps ErrUpdateFailed
func IsUpdateFailedError(err error) bool {
	return errors.Is(err, ErrUpdateFailed)
}

// newStageError wraps the cause of an aborted update with the failing stage
func newStageError(stage string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpdateFailed, stage, cause)
}
