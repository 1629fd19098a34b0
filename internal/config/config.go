package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/imdario/mergo"
	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/browser-timeline/config.yaml"

// Config holds all browser-timeline configuration.
type Config struct {
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type AcquisitionConfig struct {
	TempDir      string `yaml:"temp_dir"`
	CopySidecars bool   `yaml:"copy_sidecars"`
	VerifyHash   bool   `yaml:"verify_hash"`
}

type OutputConfig struct {
	ConsoleSeparator string   `yaml:"console_separator"`
	EventTypes       []string `yaml:"event_types"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrDefault loads the config at path. An empty path means the default
// location, which may be absent; defaults are returned in that case. An
// explicit path that does not exist is an error.
func LoadOrDefault(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	expanded, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(expanded); os.IsNotExist(err) && !explicit {
		return DefaultConfig(), nil
	}

	return Load(expanded)
}

// Overlay copies every non-zero field of override onto cfg.
func Overlay(cfg, override *Config) error {
	if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
		return fmt.Errorf("merging config overrides: %w", err)
	}
	return cfg.Validate()
}

// Validate checks values that cannot be expressed in the YAML types.
func (c *Config) Validate() error {
	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if c.Output.ConsoleSeparator == "" {
		return fmt.Errorf("output.console_separator must not be empty")
	}
	return nil
}

// SlogLevel parses Level as a slog level name.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}
