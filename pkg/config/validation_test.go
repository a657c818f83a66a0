package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := Validate(&cfg); err != nil {
		t.Fatalf("Expected default config to validate, got: %v", err)
	}
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "VERBOSE"

	if err := Validate(&cfg); err == nil {
		t.Fatal("Expected error for invalid log level, got nil")
	}
}

func TestValidate_BadStoreTypes(t *testing.T) {
	cfg := validConfig()
	cfg.Tree.Type = "postgres"
	if err := Validate(&cfg); err == nil {
		t.Fatal("Expected error for unknown tree store type, got nil")
	}

	cfg = validConfig()
	cfg.Blob.Type = "ftp"
	if err := Validate(&cfg); err == nil {
		t.Fatal("Expected error for unknown blob store type, got nil")
	}
}

func TestValidate_BadgerRequiresPath(t *testing.T) {
	cfg := validConfig()
	cfg.Tree.Type = "badger"
	cfg.Tree.Badger = map[string]any{"path": ""}

	err := Validate(&cfg)
	if err == nil {
		t.Fatal("Expected error for badger without path, got nil")
	}
	if !strings.Contains(err.Error(), "path") {
		t.Errorf("Expected path error, got: %v", err)
	}

	// in_memory lifts the requirement.
	cfg.Tree.Badger = map[string]any{"in_memory": true}
	if err := Validate(&cfg); err != nil {
		t.Fatalf("Expected in_memory badger to validate, got: %v", err)
	}
}

func TestValidate_S3RequiresBucketAndRegion(t *testing.T) {
	cfg := validConfig()
	cfg.Blob.Type = "s3"
	cfg.Blob.S3 = map[string]any{"region": "eu-west-1"}

	if err := Validate(&cfg); err == nil {
		t.Fatal("Expected error for s3 without bucket, got nil")
	}

	cfg.Blob.S3 = map[string]any{"bucket": "canopy"}
	if err := Validate(&cfg); err == nil {
		t.Fatal("Expected error for s3 without region, got nil")
	}

	cfg.Blob.S3 = map[string]any{"bucket": "canopy", "region": "eu-west-1"}
	if err := Validate(&cfg); err != nil {
		t.Fatalf("Expected complete s3 config to validate, got: %v", err)
	}
}
