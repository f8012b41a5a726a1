package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultStateDir holds config, saved tournaments and logs unless overridden.
const DefaultStateDir = ".ranker"

// Config holds all ranker configuration.
type Config struct {
	// StateDir is the root for relative store and log paths.
	StateDir string `yaml:"state_dir"`

	Store   StoreConfig   `yaml:"store"`
	Pairing PairingConfig `yaml:"pairing"`
	UI      UIConfig      `yaml:"ui"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		StateDir: DefaultStateDir,
		Store:    *DefaultStoreConfig(),
		Pairing:  *DefaultPairingConfig(),
		UI:       *DefaultUIConfig(),
		Export:   *DefaultExportConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultConfigPath returns <DefaultStateDir>/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultStateDir, "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if dir := os.Getenv("RANKER_STATE_DIR"); dir != "" {
		c.StateDir = dir
	}
	if backend := os.Getenv("RANKER_STORE"); backend != "" {
		c.Store.Backend = backend
	}
	if raw := os.Getenv("RANKER_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid RANKER_SEED %q: %w", raw, err)
		}
		c.Pairing.Seed = seed
	}
	if raw := os.Getenv("RANKER_DEBUG"); raw != "" {
		debug, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid RANKER_DEBUG %q: %w", raw, err)
		}
		c.Logging.DebugMode = debug
		if debug {
			c.Logging.Level = "debug"
		}
	}
	return nil
}

// Resolve returns the path joined onto StateDir unless it is absolute.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.StateDir, path)
}

// ResolvedStore returns the store settings with paths resolved against StateDir.
func (c *Config) ResolvedStore() StoreConfig {
	s := c.Store
	s.Dir = c.Resolve(s.Dir)
	s.Database = c.Resolve(s.Database)
	return s
}

// ValidBackends lists the supported store backends.
var ValidBackends = []string{BackendFile, BackendSQLite}

// ValidThemes lists the supported UI themes.
var ValidThemes = []string{"auto", "light", "dark"}

// ValidLevels lists the supported log levels.
var ValidLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.StateDir == "" {
		return fmt.Errorf("state_dir must not be empty")
	}
	if !slices.Contains(ValidBackends, c.Store.Backend) {
		return fmt.Errorf("invalid store backend: %s (valid: %v)", c.Store.Backend, ValidBackends)
	}
	if c.Store.Backend == BackendFile && c.Store.Dir == "" {
		return fmt.Errorf("store.dir must be set for the file backend")
	}
	if c.Store.Backend == BackendSQLite && c.Store.Database == "" {
		return fmt.Errorf("store.database must be set for the sqlite backend")
	}
	if m := c.Pairing.SkipMean; m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return fmt.Errorf("pairing.skip_mean must be a finite number >= 0, got %v", m)
	}
	if !slices.Contains(ValidThemes, c.UI.Theme) {
		return fmt.Errorf("invalid ui theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}
	if c.Export.DateFormat == "" {
		return fmt.Errorf("export.date_format must not be empty")
	}
	if c.Logging.Level != "" && !slices.Contains(ValidLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	return nil
}
