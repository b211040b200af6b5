// Package config loads the widgets configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all widget settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Slash   SlashConfig   `yaml:"slash"`
	Resize  ResizeConfig  `yaml:"resize"`
	Images  ImagesConfig  `yaml:"images"`
	Layout  LayoutConfig  `yaml:"layout"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// File, when set, also writes JSON logs there with rotation.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// SlashConfig configures the slash palette.
type SlashConfig struct {
	// Lookback is how many characters before the caret may hold the
	// trigger.
	Lookback int    `yaml:"lookback"`
	Debounce string `yaml:"debounce"`
	// Catalog is a YAML file of palette items. Empty means the built-in
	// set.
	Catalog string `yaml:"catalog"`
	Watch   bool   `yaml:"watch"`
}

// ResizeConfig bounds image drags.
type ResizeConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// ImagesConfig configures natural size lookups.
type ImagesConfig struct {
	BaseDir      string `yaml:"base_dir"`
	CacheTTL     string `yaml:"cache_ttl"`
	FetchTimeout string `yaml:"fetch_timeout"`
}

// LayoutConfig sizes the character grid used for screen coordinates.
type LayoutConfig struct {
	CellWidth  float64 `yaml:"cell_width"`
	LineHeight float64 `yaml:"line_height"`
	ImageLines int     `yaml:"image_lines"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Slash: SlashConfig{
			Lookback: 20,
			Debounce: "10ms",
		},
		Resize: ResizeConfig{
			Min: 50,
			Max: 2000,
		},
		Images: ImagesConfig{
			CacheTTL:     "30m",
			FetchTimeout: "10s",
		},
		Layout: LayoutConfig{
			CellWidth:  8,
			LineHeight: 20,
			ImageLines: 1,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("WIDGETS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("WIDGETS_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
	if catalog := os.Getenv("WIDGETS_CATALOG"); catalog != "" {
		c.Slash.Catalog = catalog
	}
	if lookback := os.Getenv("WIDGETS_SLASH_LOOKBACK"); lookback != "" {
		if n, err := strconv.Atoi(lookback); err == nil {
			c.Slash.Lookback = n
		}
	}
}

// ValidLevels lists the accepted log levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validLevel := false
	for _, l := range ValidLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	if c.Slash.Lookback < 1 {
		return fmt.Errorf("slash lookback must be positive, got %d", c.Slash.Lookback)
	}
	for name, d := range map[string]string{
		"slash.debounce":       c.Slash.Debounce,
		"images.cache_ttl":     c.Images.CacheTTL,
		"images.fetch_timeout": c.Images.FetchTimeout,
	} {
		if d == "" {
			continue
		}
		if v, err := time.ParseDuration(d); err != nil || v < 0 {
			return fmt.Errorf("invalid duration for %s: %q", name, d)
		}
	}
	if c.Resize.Min <= 0 || c.Resize.Max < c.Resize.Min {
		return fmt.Errorf("invalid resize bounds [%g, %g]", c.Resize.Min, c.Resize.Max)
	}
	if c.Layout.CellWidth <= 0 || c.Layout.LineHeight <= 0 {
		return fmt.Errorf("layout cell width and line height must be positive")
	}
	return nil
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// GetDebounce returns the slash detection debounce.
func (c *Config) GetDebounce() time.Duration {
	return parseDuration(c.Slash.Debounce, 10*time.Millisecond)
}

// GetCacheTTL returns how long natural image sizes are cached.
func (c *Config) GetCacheTTL() time.Duration {
	return parseDuration(c.Images.CacheTTL, 30*time.Minute)
}

// GetFetchTimeout returns the timeout for fetching remote images.
func (c *Config) GetFetchTimeout() time.Duration {
	return parseDuration(c.Images.FetchTimeout, 10*time.Second)
}
