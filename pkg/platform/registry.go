package platform

import (
	"errors"
	"fmt"
	"sort"
)

// ErrPlatformNotSupported is returned for platforms without a layout
var ErrPlatformNotSupported = errors.New("platform not supported")

var layouts = map[string]*Layout{
	Android.Name: Android,
}

// Get returns the layout for a platform identifier
func Get(name string) (*Layout, error) {
	layout, ok := layouts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlatformNotSupported, name)
	}
	return layout, nil
}

// Names returns the supported platform identifiers
func Names() []string {
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
