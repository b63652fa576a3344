// Package config provides configuration loading and management for tracetransform.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"tracetransform/pkg/logging"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Transform parameters
	Transform struct {
		// AngleStep is the angular sampling step in degrees
		AngleStep float64 `yaml:"angleStep"`

		// Parallel evaluates the T-functionals concurrently
		Parallel bool `yaml:"parallel"`

		// TFunctionals lists the T-functional tokens to run
		TFunctionals []string `yaml:"tFunctionals"`

		// PFunctionals lists the P-functional tokens to run
		PFunctionals []string `yaml:"pFunctionals"`
	} `yaml:"transform"`

	// Compute backend parameters
	Backend struct {
		// Workers bounds the goroutines of a single kernel launch
		Workers int `yaml:"workers"`

		// MemoryLimitMB caps device memory; 0 means unlimited
		MemoryLimitMB int `yaml:"memoryLimitMB"`
	} `yaml:"backend"`

	// Output parameters
	Output struct {
		// FeaturesFile is the CSV file receiving the feature matrix
		FeaturesFile string `yaml:"featuresFile"`

		// TraceDir receives one CSV per (T, P) trace in verbose mode
		TraceDir string `yaml:"traceDir"`

		// SinogramDir receives sinogram images in debug mode
		SinogramDir string `yaml:"sinogramDir"`
	} `yaml:"output"`

	// Logging parameters
	Logging struct {
		// Level is one of error, warning, info, debug or trace
		Level string `yaml:"level"`

		// Timestamps prefixes every line with the time of day
		Timestamps bool `yaml:"timestamps"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default transform parameters
	cfg.Transform.AngleStep = 1.0
	cfg.Transform.Parallel = false
	cfg.Transform.TFunctionals = []string{"radon"}
	cfg.Transform.PFunctionals = []string{"P1"}

	// Set default backend parameters
	cfg.Backend.Workers = runtime.NumCPU()
	cfg.Backend.MemoryLimitMB = 0

	// Set default output parameters
	cfg.Output.FeaturesFile = "features.csv"
	cfg.Output.TraceDir = "traces"
	cfg.Output.SinogramDir = "sinograms"

	// Set default logging parameters
	cfg.Logging.Level = logging.Info.String()
	cfg.Logging.Timestamps = false

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// Validate checks the value ranges of the configuration
func (c *Config) Validate() error {
	if !(c.Transform.AngleStep > 0) || c.Transform.AngleStep > 360 {
		return fmt.Errorf("transform.angleStep must be in (0, 360], got %v", c.Transform.AngleStep)
	}
	if c.Backend.Workers < 0 {
		return fmt.Errorf("backend.workers must not be negative, got %d", c.Backend.Workers)
	}
	if c.Backend.MemoryLimitMB < 0 {
		return fmt.Errorf("backend.memoryLimitMB must not be negative, got %d", c.Backend.MemoryLimitMB)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// MemoryLimit returns the backend memory limit in bytes
func (c *Config) MemoryLimit() int64 {
	return int64(c.Backend.MemoryLimitMB) << 20
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
