package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/canopyfs/canopy/internal/logger"
	"github.com/canopyfs/canopy/pkg/blob"
	blobmemory "github.com/canopyfs/canopy/pkg/blob/memory"
	blobs3 "github.com/canopyfs/canopy/pkg/blob/s3"
	"github.com/canopyfs/canopy/pkg/tree"
	treebadger "github.com/canopyfs/canopy/pkg/tree/badger"
	treememory "github.com/canopyfs/canopy/pkg/tree/memory"
)

// s3YAMLConfig represents S3 blob configuration loaded from YAML.
type s3YAMLConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	KeyPrefix       string `mapstructure:"key_prefix"`
	MaxRetries      int    `mapstructure:"max_retries"`
}

// CreateTreeStore creates a tree store based on configuration.
func CreateTreeStore(ctx context.Context, cfg TreeStoreConfig) (tree.Store, error) {
	switch cfg.Type {
	case "memory":
		logger.Info("tree store initialized: memory")
		return treememory.NewMemoryStore(), nil

	case "badger":
		var badgerCfg treebadger.BadgerStoreConfig
		if err := mapstructure.Decode(cfg.Badger, &badgerCfg); err != nil {
			return nil, fmt.Errorf("invalid badger config: %w", err)
		}

		store, err := treebadger.NewBadgerStore(ctx, badgerCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create badger tree store: %w", err)
		}

		logger.Info("tree store initialized: badger path=%s in_memory=%t",
			badgerCfg.Path, badgerCfg.InMemory)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown tree store type: %q", cfg.Type)
	}
}

// CreateBlobStore creates a blob store based on configuration.
func CreateBlobStore(ctx context.Context, cfg BlobStoreConfig) (blob.Store, error) {
	switch cfg.Type {
	case "memory":
		logger.Info("blob store initialized: memory")
		return blobmemory.NewMemoryBlobStore(), nil

	case "s3":
		return createS3BlobStore(ctx, cfg.S3)

	default:
		return nil, fmt.Errorf("unknown blob store type: %q", cfg.Type)
	}
}

// createS3BlobStore builds the AWS client from configuration and wraps it
// in the S3 blob store.
func createS3BlobStore(ctx context.Context, options map[string]any) (blob.Store, error) {
	var storeCfg s3YAMLConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("invalid s3 config: %w", err)
	}

	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("s3 blob store: bucket is required")
	}
	if storeCfg.Region == "" {
		return nil, fmt.Errorf("s3 blob store: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error

	configOptions = append(configOptions, awsConfig.WithRegion(storeCfg.Region))

	// Custom endpoint support for MinIO, Localstack, etc.
	if storeCfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               storeCfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials if provided, default credential chain otherwise.
	if storeCfg.AccessKeyID != "" && storeCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			storeCfg.AccessKeyID,
			storeCfg.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := storeCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	cfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// Path-style addressing for S3-compatible stores.
		if storeCfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	store, err := blobs3.NewS3BlobStore(ctx, blobs3.S3BlobStoreConfig{
		Client:    client,
		Bucket:    storeCfg.Bucket,
		KeyPrefix: storeCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 blob store: %w", err)
	}

	logger.Info("blob store initialized: s3 bucket=%s region=%s prefix=%s",
		storeCfg.Bucket, storeCfg.Region, storeCfg.KeyPrefix)
	return store, nil
}
