// Package config provides configuration loading and management for gridinterp.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"gridinterp/pkg/records"
	"gridinterp/pkg/scan"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Index parameters
	Index struct {
		// Division is the number of grid cells across the widest side of the
		// data envelope
		Division int `yaml:"division"`
	} `yaml:"index"`

	// Columns picks the location and data fields out of each input row
	Columns records.Columns `yaml:"columns"`

	// Scan describes the plane the interpolator is evaluated on
	Scan scan.Plane `yaml:"scan"`

	// Processing parameters
	Processing struct {
		// Workers specifies how many goroutines query the index in parallel
		Workers int `yaml:"workers"`

		// Validate runs leave-one-out cross validation before scanning
		Validate bool `yaml:"validate"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// LogFormat is either "text" or "json"
		LogFormat string `yaml:"logFormat"`

		// Image, if set, is the path of a PNG rendering of the scanned plane
		Image string `yaml:"image"`

		// ImageComponent is the data component drawn in the image; -1 draws
		// the magnitude of the whole data vector
		ImageComponent int `yaml:"imageComponent"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Index.Division = 20
	cfg.Columns = records.DefaultColumns()
	cfg.Scan = scan.DefaultPlane()

	cfg.Processing.Workers = runtime.NumCPU()
	cfg.Processing.Validate = false

	cfg.Output.Verbose = false
	cfg.Output.LogFormat = "text"
	cfg.Output.Image = ""
	cfg.Output.ImageComponent = -1

	return cfg
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Index.Division < 1 {
		return fmt.Errorf("index.division must be at least 1, got %d", c.Index.Division)
	}
	if err := c.Columns.Validate(); err != nil {
		return fmt.Errorf("columns: %w", err)
	}
	if err := c.Scan.Validate(); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if len(c.Scan.Origin) != len(c.Columns.Location) {
		return fmt.Errorf("scan.origin has %d dimensions but columns.location has %d",
			len(c.Scan.Origin), len(c.Columns.Location))
	}
	if c.Processing.Workers < 1 {
		return fmt.Errorf("processing.workers must be at least 1, got %d", c.Processing.Workers)
	}
	if c.Output.ImageComponent < -1 || c.Output.ImageComponent >= len(c.Columns.Data) {
		return fmt.Errorf("output.imageComponent %d out of range for %d data columns",
			c.Output.ImageComponent, len(c.Columns.Data))
	}
	switch c.Output.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("output.logFormat must be text or json, got %q", c.Output.LogFormat)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

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

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
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
	return SaveConfig(DefaultConfig(), configPath)
}
