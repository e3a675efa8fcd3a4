package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/cloudweave/internal/platform/s3"
)

// ObjectStore is the subset of the S3 client used for export.
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// S3Exporter copies credential snapshots to object storage.
type S3Exporter struct {
	objects ObjectStore
	bucket  string
	key     string
}

// NewS3Exporter creates an exporter writing bucket/key.
func NewS3Exporter(objects ObjectStore, bucket, key string) (*S3Exporter, error) {
	if objects == nil {
		return nil, fmt.Errorf("object store cannot be nil")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket cannot be empty")
	}
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}
	return &S3Exporter{objects: objects, bucket: bucket, key: key}, nil
}

// Export uploads the store snapshot, creating the bucket when needed.
func (e *S3Exporter) Export(ctx context.Context, store *Store) error {
	data, err := store.Marshal()
	if err != nil {
		return err
	}
	if err := e.objects.EnsureBucket(ctx, e.bucket); err != nil {
		return fmt.Errorf("failed to prepare bucket: %w", err)
	}
	if err := e.objects.PutObject(ctx, e.bucket, e.key, data); err != nil {
		return fmt.Errorf("failed to export credentials: %w", err)
	}
	return nil
}

// Import merges the remote snapshot into store. A missing object is not an error.
func (e *S3Exporter) Import(ctx context.Context, store *Store) error {
	data, err := e.objects.GetObject(ctx, e.bucket, e.key)
	if err != nil {
		if errors.Is(err, s3.ErrObjectNotFound) {
			return nil
		}
		return fmt.Errorf("failed to import credentials: %w", err)
	}
	return store.Unmarshal(data)
}
