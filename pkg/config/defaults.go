package config

import (
	"strings"
	"time"

	"github.com/canopyfs/canopy/pkg/engine"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields. Called after loading from file and environment; zero values are
// replaced, explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyTreeDefaults(&cfg.Tree)
	applyBlobDefaults(&cfg.Blob)
	applyEngineDefaults(&cfg.Engine)
}

// applyLoggingDefaults sets logging defaults and normalizes the level.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyTreeDefaults(cfg *TreeStoreConfig) {
	if cfg.Type == "" {
		cfg.Type = "badger"
	}
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}
	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}
	if cfg.Type == "badger" {
		if _, ok := cfg.Badger["path"]; !ok {
			cfg.Badger["path"] = "/var/lib/canopy/tree"
		}
	}
}

func applyBlobDefaults(cfg *BlobStoreConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}
	if cfg.S3 == nil {
		cfg.S3 = make(map[string]any)
	}
}

func applyEngineDefaults(cfg *EngineConfig) {
	if cfg.StorageAllotment == 0 {
		cfg.StorageAllotment = engine.DefaultStorageAllotment
	}
	if cfg.DownloadTTL == 0 {
		cfg.DownloadTTL = engine.DefaultDownloadTTL
	}
}
