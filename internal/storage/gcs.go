package storage

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/coursehub/backend/libs/config"
	"google.golang.org/api/option"
)

// gcsStorage stores files as objects of a Google Cloud Storage bucket
type gcsStorage struct {
	client *storage.Client
	bucket string
}

// NewGCSStorage creates a GCS client for the bucket
//
// Without a credentials file the client falls back to Application Default Credentials.
func NewGCSStorage(ctx context.Context, bucket, credentialsFile string) (*gcsStorage, error) {
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &gcsStorage{
		client: client,
		bucket: bucket,
	}, nil
}

// Create returns a writer for a new object; the object is committed on Close
func (s *gcsStorage) Create(ctx context.Context, name, contentType string) (io.WriteCloser, error) {
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	return w, nil
}

// Delete removes an object
func (s *gcsStorage) Delete(ctx context.Context, name string) error {
	if err := s.client.Bucket(s.bucket).Object(name).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object %q: %w", name, err)
	}
	return nil
}

// URL returns the public URL of an object
func (s *gcsStorage) URL(name string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, name)
}

// Backend returns the backend name recorded with the media metadata
func (s *gcsStorage) Backend() string {
	return config.StorageBackendGCS
}

// Close releases the underlying client
func (s *gcsStorage) Close() error {
	return s.client.Close()
}
