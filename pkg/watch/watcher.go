package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/platinummonkey/capsync/pkg/plugins"
	"github.com/sirupsen/logrus"
)

// RunFunc performs one update. Errors are logged and watching continues.
type RunFunc func(ctx context.Context) error

// Config holds watcher configuration
type Config struct {
	// Debounce coalesces bursts of events into one run (default: 500ms)
	Debounce time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Debounce: 500 * time.Millisecond,
	}
}

// triggerFiles are the manifest files whose changes alter the plugin set
var triggerFiles = map[string]bool{
	plugins.PackageFile:        true,
	"package-lock.json":        true,
	plugins.ManifestFile:       true,
	plugins.BridgeManifestFile: true,
}

// Watcher re-runs updates when the project's plugin set changes.
// Runs happen on the watch loop, one at a time.
type Watcher struct {
	projectRoot string
	modulesDir  string
	run         RunFunc
	config      *Config
	log         *logrus.Logger
}

// NewWatcher creates a watcher for a project and its plugin install dir
func NewWatcher(projectRoot, modulesDir string, run RunFunc, config *Config, log *logrus.Logger) *Watcher {
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = logrus.New()
	}
	return &Watcher{
		projectRoot: filepath.Clean(projectRoot),
		modulesDir:  filepath.Clean(modulesDir),
		run:         run,
		config:      config,
		log:         log,
	}
}

// Run performs an initial update, then watches until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.setup(fw); err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}

	w.runOnce(ctx)
	w.log.Infof("Watching %s for plugin changes", w.projectRoot)
	return w.loop(ctx, fw.Events, fw.Errors, fw.Add)
}

// setup watches the project root, the modules dir and every installed plugin dir
func (w *Watcher) setup(fw *fsnotify.Watcher) error {
	if err := fw.Add(w.projectRoot); err != nil {
		return err
	}
	return w.addModules(fw.Add, w.modulesDir, 0)
}

// addModules adds a modules dir and its package dirs; "@scope" dirs are descended once
func (w *Watcher) addModules(add func(string) error, dir string, depth int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := add(dir); err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		child := filepath.Join(dir, entry.Name())
		if depth == 0 && strings.HasPrefix(entry.Name(), "@") {
			if err := w.addModules(add, child, depth+1); err != nil {
				return err
			}
			continue
		}
		if err := add(child); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, add func(string) error) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			w.track(event, add)
			if !w.relevant(event) {
				continue
			}
			w.log.Debugf("Plugin change: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.config.Debounce)
			} else {
				timer.Reset(w.config.Debounce)
			}
			fire = timer.C

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.log.Warnf("Watcher error: %v", err)

		case <-fire:
			fire = nil
			w.runOnce(ctx)
		}
	}
}

// track watches plugin dirs installed after startup
func (w *Watcher) track(event fsnotify.Event, add func(string) error) {
	if !event.Has(fsnotify.Create) {
		return
	}
	if filepath.Clean(event.Name) == w.modulesDir {
		if err := w.addModules(add, w.modulesDir, 0); err != nil {
			w.log.Warnf("Error watching %s: %v", w.modulesDir, err)
		}
		return
	}
	if !w.inModules(filepath.Dir(event.Name)) {
		return
	}
	fi, err := os.Stat(event.Name)
	if err != nil || !fi.IsDir() {
		return
	}
	w.log.Debugf("New plugin directory: %s", event.Name)
	if err := add(event.Name); err != nil {
		w.log.Warnf("Error watching new directory: %v", err)
	}
}

// relevant reports whether an event can change the plugin set
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
		return false
	}
	if triggerFiles[filepath.Base(event.Name)] || filepath.Clean(event.Name) == w.modulesDir {
		return true
	}
	// Plugins installed or removed
	return w.inModules(filepath.Dir(event.Name)) && !strings.HasPrefix(filepath.Base(event.Name), ".")
}

// inModules reports whether dir is the modules dir or a scope dir inside it
func (w *Watcher) inModules(dir string) bool {
	dir = filepath.Clean(dir)
	if dir == w.modulesDir {
		return true
	}
	return filepath.Dir(dir) == w.modulesDir && strings.HasPrefix(filepath.Base(dir), "@")
}

func (w *Watcher) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := w.run(ctx); err != nil {
		w.log.Errorf("Update failed: %v", err)
		return
	}
	w.log.Debugf("Update finished in %s", time.Since(start).Round(time.Millisecond))
}
