package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "mtm"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "MTM"
)

// Loader handles loading configuration from files, environment variables and
// bound command-line flags.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader. It uses the global viper
// instance so cobra flag bindings participate in precedence.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// GetViper exposes the underlying viper instance for flag re-unmarshaling.
func (l *Loader) GetViper() *viper.Viper { return l.v }

// Load reads configuration from all sources and returns a validated Config.
// A missing configuration file is not an error; defaults and environment
// variables apply.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")

	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	l.v.SetConfigFile(configFile)

	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// addConfigPaths registers the config file search locations: the working
// directory, $HOME, $HOME/.config/mtm and /etc/mtm.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
		l.v.AddConfigPath(filepath.Join(home, ".config", "mtm"))
	}
	l.v.AddConfigPath("/etc/mtm")
}

// setupEnvironmentVariables enables MTM_* environment variable overrides,
// e.g. MTM_MATCHING_SCORE_THRESHOLD.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

// setDefaults registers the default value for every configuration key.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("matching.score_threshold", defaults.Matching.ScoreThreshold)
	l.v.SetDefault("matching.max_overlap", defaults.Matching.MaxOverlap)
	l.v.SetDefault("matching.objects", defaults.Matching.Objects)
	l.v.SetDefault("matching.downscaling_factor", defaults.Matching.DownscalingFactor)

	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.file", defaults.Output.File)
	l.v.SetDefault("output.overlay", defaults.Output.Overlay)
	l.v.SetDefault("output.show_legend", defaults.Output.ShowLegend)
	l.v.SetDefault("output.show_score", defaults.Output.ShowScore)

	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.timeout_seconds", defaults.Server.TimeoutSeconds)
	l.v.SetDefault("server.max_upload_mb", defaults.Server.MaxUploadMB)
}
