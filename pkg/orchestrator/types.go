package orchestrator

import (
	"context"

	"github.com/platinummonkey/capsync/pkg/assets"
	"github.com/platinummonkey/capsync/pkg/codegen"
	"github.com/platinummonkey/capsync/pkg/plugins"
)

// Updater runs one synthesis pass over a resolved plugin set
type Updater interface {
	// Update synchronizes assets, regenerates descriptors and merges the shared build script
	Update(ctx context.Context, manifests []*plugins.Manifest) (*Result, error)
}

// Config holds orchestrator configuration
type Config struct {
	// ProjectRoot is the host application root (required)
	ProjectRoot string

	// Platform selects the layout (default: android)
	Platform string

	// ModulesDir is where plugins are installed (default: node_modules under ProjectRoot)
	ModulesDir string

	// AssetRoot overrides the layout's asset root, relative to ProjectRoot
	AssetRoot string

	// MaxWorkers bounds parallel plugin copies (default: 5)
	MaxWorkers int

	// Preferences override plugin preference defaults by name
	Preferences map[string]string
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Platform:   "android",
		ModulesDir: "node_modules",
		MaxWorkers: assets.DefaultConfig().MaxWorkers,
	}
}

// Result describes what an update produced
type Result struct {
	Platform       string
	Classification *plugins.Classification

	// Assets is nil when no bridge plugin was active and the tree was only pruned
	Assets *assets.Report

	Descriptors []codegen.GeneratedFile

	// BuildScript is the project relative path of the merged build script
	BuildScript string

	// Unresolved lists preferences left as literal placeholders
	Unresolved []string
}
