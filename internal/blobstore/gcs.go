package blobstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/vzahanych/weather-dashboard/internal/config"
)

// GCSBackend talks to Google Cloud Storage using the SDK's ambient credentials.
type GCSBackend struct {
	client    *storage.Client
	projectID string
}

func NewGCSBackend(ctx context.Context, cfg config.StorageConfig) (*GCSBackend, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSBackend{
		client:    client,
		projectID: cfg.ProjectID,
	}, nil
}

func (b *GCSBackend) Name() string {
	return "GCS"
}

func (b *GCSBackend) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := b.client.Bucket(bucket).Attrs(ctx)
	if errors.Is(err, storage.ErrBucketNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *GCSBackend) CreateBucket(ctx context.Context, bucket string) error {
	if b.projectID == "" {
		return errors.New("project id is required to create a bucket")
	}
	return b.client.Bucket(bucket).Create(ctx, b.projectID, nil)
}

func (b *GCSBackend) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := b.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		// cancelling before Close aborts the upload
		cancel()
		_ = w.Close()
		return err
	}

	if err := w.Close(); err != nil {
		if errors.Is(err, storage.ErrBucketNotExist) {
			return fmt.Errorf("%w: %s", ErrBucketNotExist, bucket)
		}
		return err
	}
	return nil
}

func (b *GCSBackend) Close() error {
	return b.client.Close()
}
