package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/platinummonkey/capsync/pkg/orchestrator"
	"github.com/platinummonkey/capsync/pkg/platform"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is the config file looked up when no path is given
	DefaultFile = "capsync.yaml"

	// EnvPrefix prefixes every environment override
	EnvPrefix = "CAPSYNC_"

	// PreferenceEnvPrefix prefixes preference overrides (CAPSYNC_PREF_MAPS_VERSION=17.0.0)
	PreferenceEnvPrefix = EnvPrefix + "PREF_"
)

// Config holds all capsync configuration
type Config struct {
	// ProjectRoot is the host application root
	ProjectRoot string `yaml:"project_root"`

	// Platform is the target platform identifier
	Platform string `yaml:"platform"`

	// ModulesDir is the plugin install dir, relative to ProjectRoot
	ModulesDir string `yaml:"modules_dir"`

	// AssetRoot overrides the platform's native asset tree, relative to ProjectRoot
	AssetRoot string `yaml:"asset_root,omitempty"`

	// Workers bounds parallel plugin copies
	Workers int `yaml:"workers"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// Preferences override plugin preference defaults by name
	Preferences map[string]string `yaml:"preferences,omitempty"`

	// Watch configures `capsync watch`
	Watch WatchConfig `yaml:"watch"`
}

// WatchConfig holds watch mode settings
type WatchConfig struct {
	// Debounce coalesces bursts of filesystem events into one update
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		ProjectRoot: ".",
		Platform:    platform.Android.Name,
		ModulesDir:  "node_modules",
		Workers:     orchestrator.DefaultConfig().MaxWorkers,
		LogLevel:    "info",
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// LoadConfig loads configuration from a YAML file, an optional .env file next to it,
// and CAPSYNC_* environment variables, in increasing precedence.
// An empty path looks for DefaultFile in the working directory and tolerates its absence.
func LoadConfig(file string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := file != ""
	if !explicit {
		file = DefaultFile
	}

	if err := cfg.loadFile(file); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := loadDotEnv(filepath.Join(filepath.Dir(file), ".env")); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile merges a YAML file into the config. A relative project root in the
// file is resolved against the file's directory.
func (c *Config) loadFile(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", file, err)
	}

	if c.ProjectRoot != "" && !filepath.IsAbs(c.ProjectRoot) {
		c.ProjectRoot = filepath.Join(filepath.Dir(file), c.ProjectRoot)
	}
	return nil
}

// loadDotEnv loads a .env file if present; variables already set win
func loadDotEnv(file string) error {
	if _, err := os.Stat(file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", file, err)
	}
	if err := godotenv.Load(file); err != nil {
		return fmt.Errorf("failed to load %s: %w", file, err)
	}
	return nil
}

// applyEnv applies CAPSYNC_* environment overrides
func (c *Config) applyEnv() {
	c.ProjectRoot = getEnv(EnvPrefix+"PROJECT_ROOT", c.ProjectRoot)
	c.Platform = getEnv(EnvPrefix+"PLATFORM", c.Platform)
	c.ModulesDir = getEnv(EnvPrefix+"MODULES_DIR", c.ModulesDir)
	c.AssetRoot = getEnv(EnvPrefix+"ASSET_ROOT", c.AssetRoot)
	c.Workers = getEnvInt(EnvPrefix+"WORKERS", c.Workers)
	c.LogLevel = getEnv(EnvPrefix+"LOG_LEVEL", c.LogLevel)
	c.Watch.Debounce = getEnvDuration(EnvPrefix+"WATCH_DEBOUNCE", c.Watch.Debounce)

	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, PreferenceEnvPrefix) {
			continue
		}
		name := strings.TrimPrefix(key, PreferenceEnvPrefix)
		if name == "" {
			continue
		}
		if c.Preferences == nil {
			c.Preferences = make(map[string]string)
		}
		c.Preferences[name] = value
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ProjectRoot == "" {
		return fmt.Errorf("project root is required")
	}
	if _, err := platform.Get(c.Platform); err != nil {
		return err
	}
	if c.ModulesDir == "" {
		return fmt.Errorf("modules dir is required")
	}
	if c.AssetRoot != "" {
		clean := path.Clean(filepath.ToSlash(c.AssetRoot))
		if path.IsAbs(clean) || filepath.IsAbs(c.AssetRoot) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
			return fmt.Errorf("asset root must be a directory inside the project: %s", c.AssetRoot)
		}
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative")
	}
	for name := range c.Preferences {
		if name == "" || strings.ContainsAny(name, " \t\n$") {
			return fmt.Errorf("invalid preference name: %q", name)
		}
	}
	return nil
}

// Level returns the configured log level, defaulting to info
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// ModulesPath returns the absolute plugin install dir
func (c *Config) ModulesPath() string {
	if filepath.IsAbs(c.ModulesDir) {
		return c.ModulesDir
	}
	return filepath.Join(c.ProjectRoot, c.ModulesDir)
}

// OrchestratorConfig converts the configuration for the update pipeline
func (c *Config) OrchestratorConfig() *orchestrator.Config {
	return &orchestrator.Config{
		ProjectRoot: c.ProjectRoot,
		Platform:    c.Platform,
		ModulesDir:  c.ModulesDir,
		AssetRoot:   c.AssetRoot,
		MaxWorkers:  c.Workers,
		Preferences: c.Preferences,
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
