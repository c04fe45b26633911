// ./internal/config/config.go

/*
Package config loads the hdchart settings from a YAML file and the
environment.

This program is free software; you can redistribute it and/or
modify it under the terms of the GNU General Public License
as published by the Free Software Foundation; either version 2
of the License, or (at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program; if not, write to the Free Software
Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
02110-1301, USA.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all hdchart settings.
type Config struct {
	Ephemeris EphemerisConfig `yaml:"ephemeris"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Batch     BatchConfig     `yaml:"batch"`
}

// EphemerisConfig selects the position engine.
type EphemerisConfig struct {
	// Path to a JPL DE binary file. Empty selects the analytic engine.
	Path string `yaml:"path"`
}

// LoggingConfig configures the zerolog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// TracingConfig configures span export.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// BatchConfig bounds the batch command's fan-out.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// ValidFormats lists the accepted log formats.
var ValidFormats = []string{"console", "json"}

// ValidLevels lists the accepted log levels.
var ValidLevels = []string{"trace", "debug", "info", "warn", "warning", "error", "disabled", "off"}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Tracing: TracingConfig{
			ServiceName: "hdchart",
			SampleRatio: 1,
		},
		Batch: BatchConfig{
			Workers: runtime.NumCPU(),
		},
	}
}

// Load reads path over the defaults and then applies environment overrides.
// A missing file is not an error; an empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
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
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
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

func (c *Config) applyEnvOverrides() {
	if p, ok := os.LookupEnv("HDCHART_EPHE_PATH"); ok {
		c.Ephemeris.Path = strings.TrimSpace(p)
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("HDCHART_TRACING")); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Tracing.Enabled = on
		}
	}
}

// Validate checks the values a file or the environment may have broken.
func (c *Config) Validate() error {
	if !contains(ValidLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	if !contains(ValidFormats, strings.ToLower(c.Logging.Format)) {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidFormats)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch workers must be at least 1, got %d", c.Batch.Workers)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing sample ratio must be within [0, 1], got %g", c.Tracing.SampleRatio)
	}
	return nil
}

// UsesDE reports whether a DE file is configured.
func (c *Config) UsesDE() bool {
	return c.Ephemeris.Path != ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
