// Package s3 implements blob.Store using Amazon S3 or any S3-compatible
// object store (MinIO, Localstack, etc.).
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3BlobStore implements blob.Store over an S3 bucket.
//
// Key Design:
// Object keys are the caller-provided storage refs, optionally under a
// configured prefix. The bucket therefore mirrors the logical layout
// ("user-<id>/<uuid>-<name>"), which keeps bucket contents inspectable and
// makes per-user cleanup a prefix operation.
//
// Downloads:
// Content is never proxied through the service. PresignedGetURL hands out
// a time-limited GET link signed with the client's credentials, and the
// consumer fetches the object directly from S3.
//
// Thread Safety:
// The AWS SDK clients are safe for concurrent use; this type holds no
// other mutable state.
type S3BlobStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	keyPrefix string
}

// S3BlobStoreConfig contains configuration for the S3 blob store.
type S3BlobStoreConfig struct {
	// Client is the configured S3 client.
	Client *s3.Client

	// Bucket is the S3 bucket name. It must already exist.
	Bucket string

	// KeyPrefix is an optional prefix for all object keys.
	KeyPrefix string
}

// NewS3BlobStore creates an S3-backed blob store and verifies bucket
// access. The bucket must already exist.
func NewS3BlobStore(ctx context.Context, cfg S3BlobStoreConfig) (*S3BlobStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	_, err := cfg.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", cfg.Bucket, err)
	}

	return &S3BlobStore{
		client:    cfg.Client,
		presigner: s3.NewPresignClient(cfg.Client),
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

func (s *S3BlobStore) objectKey(key string) string {
	if s.keyPrefix != "" {
		return s.keyPrefix + key
	}
	return key
}

func (s *S3BlobStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload object %q: %w", key, err)
	}
	return nil
}

func (s *S3BlobStore) PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %q: %w", key, err)
	}

	return req.URL, nil
}

func (s *S3BlobStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		// S3 DeleteObject on a missing key already succeeds; NoSuchKey can
		// still surface from some S3-compatible stores.
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil
		}
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

func (s *S3BlobStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %q unreachable: %w", s.bucket, err)
	}
	return nil
}
