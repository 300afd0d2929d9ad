// Package config holds the application configuration and its loading rules.
package config

import (
	"fmt"
)

const (
	infoLevel = "info"

	// UnboundedObjects marks an unlimited expected object count in
	// configuration files and flags.
	UnboundedObjects = 0
)

// Config represents the complete configuration for the mtm application.
// It supports loading from configuration files, environment variables and
// command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Matching parameters
	Matching MatchingConfig `mapstructure:"matching" yaml:"matching" json:"matching"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// MatchingConfig contains template matching settings.
type MatchingConfig struct {
	ScoreThreshold    float64 `mapstructure:"score_threshold" yaml:"score_threshold" json:"score_threshold"`
	MaxOverlap        float64 `mapstructure:"max_overlap" yaml:"max_overlap" json:"max_overlap"`
	Objects           int     `mapstructure:"objects" yaml:"objects" json:"objects"` // 0 = unbounded
	DownscalingFactor int     `mapstructure:"downscaling_factor" yaml:"downscaling_factor" json:"downscaling_factor"`
}

// OutputConfig contains result output settings.
type OutputConfig struct {
	Format     string `mapstructure:"format" yaml:"format" json:"format"` // text, json, yaml, csv
	File       string `mapstructure:"file" yaml:"file" json:"file"`
	Overlay    string `mapstructure:"overlay" yaml:"overlay" json:"overlay"`
	ShowLegend bool   `mapstructure:"show_legend" yaml:"show_legend" json:"show_legend"`
	ShowScore  bool   `mapstructure:"show_score" yaml:"show_score" json:"show_score"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string `mapstructure:"host" yaml:"host" json:"host"`
	Port           int    `mapstructure:"port" yaml:"port" json:"port"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
	MaxUploadMB    int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
}

// DefaultConfig returns a configuration with the reference defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: infoLevel,
		Matching: MatchingConfig{
			ScoreThreshold:    0.5,
			MaxOverlap:        0.25,
			Objects:           UnboundedObjects,
			DownscalingFactor: 1,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Host:           "localhost",
			Port:           8080,
			TimeoutSeconds: 30,
			MaxUploadMB:    64,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", infoLevel, "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %q", c.LogLevel)
	}
	if err := c.Matching.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	return c.Server.Validate()
}

// Validate checks matching parameter ranges.
func (m *MatchingConfig) Validate() error {
	if m.ScoreThreshold < 0 || m.ScoreThreshold > 1 {
		return fmt.Errorf("score_threshold must be in [0, 1], got %g", m.ScoreThreshold)
	}
	if m.MaxOverlap < 0 || m.MaxOverlap > 1 {
		return fmt.Errorf("max_overlap must be in [0, 1], got %g", m.MaxOverlap)
	}
	if m.Objects < 0 {
		return fmt.Errorf("objects must be >= 0 (0 = unbounded), got %d", m.Objects)
	}
	if m.DownscalingFactor < 1 {
		return fmt.Errorf("downscaling_factor must be >= 1, got %d", m.DownscalingFactor)
	}
	return nil
}

// Validate checks the output format.
func (o *OutputConfig) Validate() error {
	switch o.Format {
	case "text", "json", "yaml", "csv":
		return nil
	default:
		return fmt.Errorf("invalid output format: %q", o.Format)
	}
}

// Validate checks server parameter ranges.
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", s.Port)
	}
	if s.TimeoutSeconds < 1 {
		return fmt.Errorf("server timeout must be >= 1 second, got %d", s.TimeoutSeconds)
	}
	if s.MaxUploadMB < 1 {
		return fmt.Errorf("max upload size must be >= 1 MB, got %d", s.MaxUploadMB)
	}
	return nil
}
