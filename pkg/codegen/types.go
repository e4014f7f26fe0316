package codegen

import "github.com/platinummonkey/capsync/pkg/plugins"

// GeneratedFile represents a single generated file
type GeneratedFile struct {
	Path    string // Slash-separated path relative to the project root
	Content []byte
	Size    int64
}

// Generator generates build descriptors for native module plugins
type Generator interface {
	// Generate creates the descriptors for the given plugins, in input order
	Generate(nativeModules []*plugins.Manifest) ([]GeneratedFile, error)

	// GetName returns the name of the build system
	GetName() string

	// GetConfigFiles returns the list of files this generator creates
	GetConfigFiles() []string
}
