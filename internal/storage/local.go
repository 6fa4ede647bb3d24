package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/coursehub/backend/libs/config"
)

// localStorage stores files on the local filesystem, served under /media/
type localStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage creates a new localStorage instance
func NewLocalStorage(basePath, baseURL string) *localStorage {
	return &localStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}
}

// path returns the full file path of name; names never contain separators
func (s *localStorage) path(name string) string {
	return filepath.Join(s.basePath, filepath.Base(name))
}

// Create creates a new file and returns a WriteCloser
func (s *localStorage) Create(ctx context.Context, name, contentType string) (io.WriteCloser, error) {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return os.Create(s.path(name))
}

// Delete removes a file
func (s *localStorage) Delete(ctx context.Context, name string) error {
	return os.Remove(s.path(name))
}

// URL returns the public URL of a stored file
func (s *localStorage) URL(name string) string {
	return fmt.Sprintf("%s/media/%s", s.baseURL, name)
}

// Backend returns the backend name recorded with the media metadata
func (s *localStorage) Backend() string {
	return config.StorageBackendLocal
}

// Dir returns the directory files are written to
func (s *localStorage) Dir() string {
	return s.basePath
}
