package plugins

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

// SkippedPlugin is a dependency that could not be loaded as a plugin
type SkippedPlugin struct {
	ID  string
	Err error
}

// Discovery is the outcome of scanning a project for installed plugins
type Discovery struct {
	Plugins []*Manifest
	Skipped []SkippedPlugin
}

// Loader discovers installed plugins from a project's package.json dependencies
type Loader struct {
	projectRoot string
	modulesDir  string
	log         *logrus.Logger
}

// NewLoader creates a new plugin loader.
// modulesDir is resolved against projectRoot when relative.
func NewLoader(projectRoot, modulesDir string, log *logrus.Logger) *Loader {
	if log == nil {
		log = logrus.New()
	}
	if modulesDir == "" {
		modulesDir = "node_modules"
	}
	if !filepath.IsAbs(modulesDir) {
		modulesDir = filepath.Join(projectRoot, modulesDir)
	}

	return &Loader{
		projectRoot: projectRoot,
		modulesDir:  modulesDir,
		log:         log,
	}
}

// ModulesDir returns the directory dependencies are installed into
func (l *Loader) ModulesDir() string {
	return l.modulesDir
}

// DiscoverPlugins loads every project dependency that carries a plugin manifest.
// Dependencies are visited in sorted order so the result is deterministic.
// Malformed manifests are skipped with a warning; they never fail discovery.
func (l *Loader) DiscoverPlugins(ctx context.Context) (*Discovery, error) {
	pkg, err := readPackageJSON(filepath.Join(l.projectRoot, PackageFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read project dependencies: %w", err)
	}

	names := make([]string, 0, len(pkg.Dependencies)+len(pkg.DevDeps))
	seen := make(map[string]bool)
	for _, deps := range []map[string]string{pkg.Dependencies, pkg.DevDeps} {
		for name := range deps {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	discovery := &Discovery{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		manifest, err := l.LoadPlugin(ctx, filepath.Join(l.modulesDir, filepath.FromSlash(name)))
		switch {
		case err == nil:
			discovery.Plugins = append(discovery.Plugins, manifest)
		case errors.Is(err, ErrManifestNotFound):
			l.log.Debugf("Dependency %s is not a plugin", name)
		default:
			l.log.WithField("plugin", name).Warnf("Skipping plugin: %v", err)
			discovery.Skipped = append(discovery.Skipped, SkippedPlugin{ID: name, Err: err})
		}
	}

	return discovery, nil
}

// LoadPlugin loads a single plugin from its directory
func (l *Loader) LoadPlugin(ctx context.Context, dir string) (*Manifest, error) {
	manifest, err := LoadManifestFromDir(dir)
	if err != nil {
		return nil, err
	}

	l.log.Debugf("Loaded plugin: %s v%s", manifest.DisplayName(), manifest.Version)
	return manifest, nil
}
