// Package config holds the annotation session configuration. Values come from
// an optional YAML file and are then overridden by command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend selects the Image Store implementation
type Backend string

const (
	BackendOpenCV Backend = "opencv"
	BackendRaster Backend = "raster"
)

const (
	DefaultRequiredPixels = 4
	DefaultGroup          = "Donors"
	DefaultScale          = 800
	DefaultZoomHalfSize   = 50
	// SecondMonitorOffset is the horizontal window offset used when the
	// secondary-monitor flag is set.
	SecondMonitorOffset = 2000
)

// Config represents one annotation session
type Config struct {
	// ImageSource is the path of the image to annotate
	ImageSource string `yaml:"image_source"`

	// OutputName is the output table name, written as <OutputName>.csv in SaveDir
	OutputName string `yaml:"output_name"`

	// ImageID identifies the image in every record
	ImageID string `yaml:"image_id"`

	// RequiredPixels is the exact selection length a commit needs
	RequiredPixels int `yaml:"required_pixels"`

	// Group is the patient group label for fovea pit records
	Group string `yaml:"group"`

	// Scale is the long side of the primary window in screen pixels
	Scale int `yaml:"scale"`

	SecondMonitor bool   `yaml:"second_monitor"`
	SaveDir       string `yaml:"save_dir"`

	// Resume reloads staged picks left by an interrupted pass instead of clearing them
	Resume bool `yaml:"resume"`

	Backend      Backend `yaml:"backend"`
	ZoomHalfSize int     `yaml:"zoom_half_size"`

	LogLevel string `yaml:"log_level"`
	JSONLogs bool   `yaml:"json_logs"`

	// WriteConfig is set from the command line only: the effective
	// configuration is written there instead of starting a session.
	WriteConfig string `yaml:"-"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	saveDir, err := os.Getwd()
	if err != nil {
		saveDir = "."
	}

	return &Config{
		RequiredPixels: DefaultRequiredPixels,
		Group:          DefaultGroup,
		Scale:          DefaultScale,
		SecondMonitor:  true,
		SaveDir:        saveDir,
		Backend:        BackendOpenCV,
		ZoomHalfSize:   DefaultZoomHalfSize,
		LogLevel:       "info",
	}
}

// Load reads configuration from a YAML file.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// Validate checks the values a session cannot run without
func (c *Config) Validate() error {
	if c.ImageSource == "" {
		return errors.New("image source is required")
	}
	if c.OutputName == "" {
		return errors.New("output name is required")
	}
	if c.ImageID == "" {
		return errors.New("image id is required")
	}
	if err := checkFileComponent("output name", c.OutputName); err != nil {
		return err
	}
	if err := checkFileComponent("image id", c.ImageID); err != nil {
		return err
	}
	if c.RequiredPixels <= 0 || c.RequiredPixels%2 != 0 {
		return fmt.Errorf("required pixels must be a positive even number, got %d", c.RequiredPixels)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %d", c.Scale)
	}
	if c.ZoomHalfSize <= 0 {
		return fmt.Errorf("zoom half size must be positive, got %d", c.ZoomHalfSize)
	}
	switch c.Backend {
	case BackendOpenCV, BackendRaster:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.SaveDir == "" {
		return errors.New("save directory is required")
	}
	return nil
}

// checkFileComponent rejects values that would leave the save directory when
// used as part of a file name.
func checkFileComponent(field, value string) error {
	if value == "." || value == ".." || strings.ContainsAny(value, `/\`) {
		return fmt.Errorf("%s %q must not contain path separators", field, value)
	}
	return nil
}

// WindowOffset is the x position of the primary window
func (c *Config) WindowOffset() int {
	if c.SecondMonitor {
		return SecondMonitorOffset
	}
	return 0
}

// OutputPath is the persistent table location
func (c *Config) OutputPath() string {
	return filepath.Join(c.SaveDir, c.OutputName+".csv")
}
