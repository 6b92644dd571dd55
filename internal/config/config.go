// Package config loads and saves tally.yaml and layers flag and environment
// overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tallyhq/tally/internal/categories"
	"github.com/tallyhq/tally/internal/kv"
)

// FileName is the config file name inside the data directory.
const FileName = "tally.yaml"

// Default storage locations, relative to the data directory.
const (
	DefaultFileDir    = "data"
	DefaultSQLiteFile = "tally.db"
)

// Log levels and formats accepted by Validate.
var (
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"console", "json"}
)

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Categories []string      `yaml:"categories"`
	Storage    StorageConfig `yaml:"storage"`
	Log        LogConfig     `yaml:"log"`
}

// StorageConfig selects the kv backend holding the expense snapshot.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path,omitempty"` // relative paths resolve against the data directory
	DSN     string `yaml:"dsn,omitempty"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads path, falling back to Default when the file does not
// exist. found reports whether the file was read.
func LoadOrDefault(path string) (cfg *Config, found bool, err error) {
	cfg, err = Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the stock categories and file storage.
func Default() *Config {
	return &Config{
		Categories: categories.Default(),
		Storage: StorageConfig{
			Backend: kv.BackendFile,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var problems []string

	if _, err := categories.New(c.Categories); err != nil {
		problems = append(problems, fmt.Sprintf("categories: %v", err))
	}

	if !slices.Contains(kv.Backends, c.Storage.Backend) {
		problems = append(problems, fmt.Sprintf("invalid storage backend %q: must be one of %v", c.Storage.Backend, kv.Backends))
	}
	if c.Storage.Backend == kv.BackendPostgres && c.Storage.DSN == "" {
		problems = append(problems, "storage dsn cannot be empty when using postgres backend")
	}

	if !slices.Contains(LogLevels, c.Log.Level) {
		problems = append(problems, fmt.Sprintf("invalid log level %q: must be one of %v", c.Log.Level, LogLevels))
	}
	if !slices.Contains(LogFormats, c.Log.Format) {
		problems = append(problems, fmt.Sprintf("invalid log format %q: must be one of %v", c.Log.Format, LogFormats))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// KVOptions resolves the storage settings against dataDir.
func (c *Config) KVOptions(dataDir string) kv.Options {
	opts := kv.Options{Backend: c.Storage.Backend, Path: c.Storage.Path, DSN: c.Storage.DSN}
	if opts.Path == "" {
		switch opts.Backend {
		case kv.BackendFile:
			opts.Path = DefaultFileDir
		case kv.BackendSQLite:
			opts.Path = DefaultSQLiteFile
		}
	}
	if opts.Path != "" && !filepath.IsAbs(opts.Path) {
		opts.Path = filepath.Join(dataDir, opts.Path)
	}
	return opts
}
