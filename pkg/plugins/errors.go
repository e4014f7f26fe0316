package plugins

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidManifest is returned when a plugin declares an element in an unexpected shape
	ErrInvalidManifest = errors.New("invalid plugin manifest")

	// ErrManifestNotFound is returned when a plugin directory carries no recognizable manifest
	ErrManifestNotFound = errors.New("plugin manifest not found")
)

// ManifestError describes a malformed element in a plugin manifest
type ManifestError struct {
	PluginID string
	Platform string
	Element  string // e.g., "source-file[0]"
	Message  string
}

func (e *ManifestError) Error() string {
	loc := e.PluginID
	if e.Platform != "" {
		loc += "/" + e.Platform
	}
	if e.Element != "" {
		loc += " " + e.Element
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidManifest, loc, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidManifest
func (e *ManifestError) Unwrap() error {
	return ErrInvalidManifest
}

// NewManifestError creates a manifest error for one element of a plugin
func NewManifestError(pluginID, platform, element, format string, args ...interface{}) error {
	return &ManifestError{
		PluginID: pluginID,
		Platform: platform,
		Element:  element,
		Message:  fmt.Sprintf(format, args...),
	}
}

// IsManifestError checks if the error is or wraps ErrInvalidManifest
func IsManifestError(err error) bool {
	return errors.Is(err, ErrInvalidManifest)
}
