// Package config provides unified configuration loading for ezdiff.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nvandessel/ezdiff/internal/constants"
	"gopkg.in/yaml.v3"
)

// EZDiffConfig contains all ezdiff configuration settings.
type EZDiffConfig struct {
	// Simulation contains settings for recovery sweeps.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Storage contains settings for the run history database.
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Logging contains settings for operational and event logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SimulationConfig configures the driver-level sweep. The numerical core
// never reads it.
type SimulationConfig struct {
	// SampleSizes are the N values swept, in order. Each must be >= 2.
	SampleSizes []int `json:"sample_sizes" yaml:"sample_sizes"`

	// Seed seeds the random source. 0 means derive one from the clock.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// StorageConfig configures where sweep results are persisted.
type StorageConfig struct {
	// Enabled saves every sweep to the history database.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory holding ezdiff.db and events.jsonl.
	// Supports ${VAR} syntax. Empty means ~/.ezdiff.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// LoggingConfig configures ezdiff's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables event logging to events.jsonl in the storage dir.
	Level string `json:"level" yaml:"level"`
}

// Default returns an EZDiffConfig with sensible defaults.
func Default() *EZDiffConfig {
	return &EZDiffConfig{
		Simulation: SimulationConfig{
			SampleSizes: constants.DefaultSampleSizes(),
			Seed:        0,
		},
		Storage: StorageConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.ezdiff/config.yaml -> environment variables
func Load() (*EZDiffConfig, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".ezdiff", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*EZDiffConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Storage.Dir = expandEnvVars(config.Storage.Dir)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *EZDiffConfig) Validate() error {
	if len(c.Simulation.SampleSizes) == 0 {
		return fmt.Errorf("sample_sizes must not be empty")
	}
	for _, n := range c.Simulation.SampleSizes {
		if n < constants.MinSampleSize {
			return fmt.Errorf("sample_sizes must all be at least %d, got %d", constants.MinSampleSize, n)
		}
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// DataDir returns the storage directory, defaulting to ~/.ezdiff.
func (c *EZDiffConfig) DataDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ezdiff"), nil
}

// ParseSampleSizes parses a comma-separated list such as "10,40,4000".
func ParseSampleSizes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid sample size %q: %w", part, err)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no sample sizes in %q", s)
	}
	return sizes, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Malformed numeric values are reported rather than silently ignored.
func applyEnvOverrides(config *EZDiffConfig) error {
	if v := os.Getenv("EZDIFF_SAMPLE_SIZES"); v != "" {
		sizes, err := ParseSampleSizes(v)
		if err != nil {
			return fmt.Errorf("EZDIFF_SAMPLE_SIZES: %w", err)
		}
		config.Simulation.SampleSizes = sizes
	}

	if v := os.Getenv("EZDIFF_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("EZDIFF_SEED: %w", err)
		}
		config.Simulation.Seed = seed
	}

	if v := os.Getenv("EZDIFF_STORAGE_ENABLED"); v != "" {
		config.Storage.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("EZDIFF_DATA_DIR"); v != "" {
		config.Storage.Dir = expandEnvVars(v)
	}

	if v := os.Getenv("EZDIFF_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	return nil
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
