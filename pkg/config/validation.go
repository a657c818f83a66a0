package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags plus custom
// rules that cannot be expressed in tags. Level normalization is handled
// by ApplyDefaults, not here.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules checks the type-specific store sections the tag
// validator cannot see into.
func validateCustomRules(cfg *Config) error {
	if cfg.Tree.Type == "badger" {
		inMemory, _ := cfg.Tree.Badger["in_memory"].(bool)
		path, _ := cfg.Tree.Badger["path"].(string)
		if !inMemory && path == "" {
			return fmt.Errorf("tree.badger: path is required unless in_memory is true")
		}
	}

	if cfg.Blob.Type == "s3" {
		bucket, _ := cfg.Blob.S3["bucket"].(string)
		if bucket == "" {
			return fmt.Errorf("blob.s3: bucket is required")
		}
		region, _ := cfg.Blob.S3["region"].(string)
		if region == "" {
			return fmt.Errorf("blob.s3: region is required")
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly
// messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
