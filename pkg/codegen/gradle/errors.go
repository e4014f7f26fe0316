package gradle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidModule is returned when a plugin cannot be registered as a Gradle module
	ErrInvalidModule = errors.New("invalid gradle module")
)

// IsInvalidModuleError checks if the error is or wraps ErrInvalidModule
func IsInvalidModuleError(err error) bool {
	return errors.Is(err, ErrInvalidModule)
}

// NewInvalidModuleError creates a new invalid module error with context
func NewInvalidModuleError(pluginID, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidModule, pluginID, reason)
}
