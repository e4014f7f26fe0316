package fsutil

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSource is returned when a declared source file does not exist at copy time
	ErrMissingSource = errors.New("source file missing")

	// ErrIO is returned for copy, remove, read and write failures
	ErrIO = errors.New("filesystem operation failed")
)

// MissingSourceError names the absent source path
type MissingSourceError struct {
	Path string
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingSource, e.Path)
}

// Unwrap lets errors.Is match ErrMissingSource
func (e *MissingSourceError) Unwrap() error {
	return ErrMissingSource
}

// IOError wraps an underlying filesystem failure with the operation and path
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrIO, e.Op, e.Path, e.Err)
}

// Unwrap exposes the underlying error
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is matches ErrIO in addition to the wrapped error
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

func newIOError(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}

// IsMissingSource checks if the error is or wraps ErrMissingSource
func IsMissingSource(err error) bool {
	return errors.Is(err, ErrMissingSource)
}

// IsIOError checks if the error is or wraps ErrIO
func IsIOError(err error) bool {
	return errors.Is(err, ErrIO)
}
