package buildscript

import (
	"errors"
	"fmt"
)

var (
	// ErrMarkerNotFound is returned when a region start or end marker is absent
	ErrMarkerNotFound = errors.New("marker not found")

	// ErrMarkerOrder is returned when the only end marker precedes the start marker
	ErrMarkerOrder = errors.New("end marker precedes start marker")

	// ErrMarkerInContent is returned when generated region content would contain a marker
	ErrMarkerInContent = errors.New("generated content contains a region marker")
)

// StructuralError reports a build script whose marker regions cannot be rewritten safely
type StructuralError struct {
	Region string
	Err    error
	Detail string
}

func (e *StructuralError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("build script region %s: %v", e.Region, e.Err)
	}
	return fmt.Sprintf("build script region %s: %v: %s", e.Region, e.Err, e.Detail)
}

// Unwrap exposes the sentinel describing the structural problem
func (e *StructuralError) Unwrap() error {
	return e.Err
}

// IsStructuralError checks if the error is or wraps a StructuralError
func IsStructuralError(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// IsMarkerNotFoundError checks if the error is or wraps ErrMarkerNotFound
func IsMarkerNotFoundError(err error) bool {
	return errors.Is(err, ErrMarkerNotFound)
}
