// Package config loads, defaults, and validates the Canopy configuration
// and builds the configured stores.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Canopy configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (CANOPY_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// Store Configuration Pattern:
// The Tree and Blob sections carry a Type selector plus one map per
// implementation; only the map matching the selected type is decoded, by
// the factory functions in stores.go.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains server-wide settings.
	Server ServerConfig `mapstructure:"server"`

	// Tree selects and configures the tree metadata store.
	Tree TreeStoreConfig `mapstructure:"tree"`

	// Blob selects and configures the file content store.
	Blob BlobStoreConfig `mapstructure:"blob"`

	// Engine tunes engine behavior.
	Engine EngineConfig `mapstructure:"engine"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// ServerConfig contains server-wide settings.
type ServerConfig struct {
	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}

// TreeStoreConfig specifies the tree store type and type-specific
// configuration.
type TreeStoreConfig struct {
	// Type specifies which tree store implementation to use.
	// Valid values: memory, badger.
	Type string `mapstructure:"type" validate:"required,oneof=memory badger"`

	// Memory contains memory-specific configuration.
	Memory map[string]any `mapstructure:"memory"`

	// Badger contains BadgerDB-specific configuration.
	Badger map[string]any `mapstructure:"badger"`
}

// BlobStoreConfig specifies the blob store type and type-specific
// configuration.
type BlobStoreConfig struct {
	// Type specifies which blob store implementation to use.
	// Valid values: memory, s3.
	Type string `mapstructure:"type" validate:"required,oneof=memory s3"`

	// Memory contains memory-specific configuration.
	Memory map[string]any `mapstructure:"memory"`

	// S3 contains S3-specific configuration.
	S3 map[string]any `mapstructure:"s3"`
}

// EngineConfig tunes engine behavior.
type EngineConfig struct {
	// StorageAllotment is the quota in bytes for new accounts.
	StorageAllotment int64 `mapstructure:"storage_allotment" validate:"gte=0"`

	// DownloadTTL is the validity window for presigned download URLs.
	DownloadTTL time.Duration `mapstructure:"download_ttl" validate:"gte=0"`

	// BcryptCost is the bcrypt work factor for password and lock
	// credential hashing. 0 selects the library default.
	BcryptCost int `mapstructure:"bcrypt_cost" validate:"gte=0,lte=31"`
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns the loaded and validated configuration.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures environment variable support and the config file
// location. Environment variables use the CANOPY_ prefix with underscores,
// e.g. CANOPY_LOGGING_LEVEL=DEBUG.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("CANOPY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. A missing file
// is acceptable; defaults apply.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory: $XDG_CONFIG_HOME/canopy,
// falling back to ~/.config/canopy, or the current directory as a last
// resort.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "canopy")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "canopy")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
