package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/internal/storage"
	"github.com/coursehub/backend/libs/apperr"
	"go.uber.org/zap"
)

// Storage defines the interface for media file storage operations
type Storage interface {
	// Create creates a new file and returns a WriteCloser; the file is complete once Close succeeds
	Create(ctx context.Context, name, contentType string) (io.WriteCloser, error)
	// Delete removes a file
	Delete(ctx context.Context, name string) error
	// URL returns the public URL of a stored file
	URL(name string) string
	// Backend returns the backend name recorded with the metadata
	Backend() string
}

// MediaRepository defines the interface for media metadata data access
type MediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
}

// allowedExtensions lists the file types educators may upload
var allowedExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {},
	"mp4": {}, "mov": {},
	"pdf": {}, "doc": {}, "docx": {},
	"zip": {},
}

type mediaService struct {
	mediaRepo MediaRepository
	storage   Storage
	logger    *zap.Logger
}

// NewMediaService creates a new media service
func NewMediaService(mediaRepo MediaRepository, storage Storage, logger *zap.Logger) *mediaService {
	return &mediaService{
		mediaRepo: mediaRepo,
		storage:   storage,
		logger:    logger,
	}
}

// Upload streams a file to the storage backend and records its metadata
//
// "filename" is the client file name; only its extension is kept.
func (s *mediaService) Upload(ctx context.Context, educatorID int, reader io.Reader, filename, contentType string) (*models.UploadResponse, error) {
	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if _, ok := allowedExtensions[extension]; !ok {
		return nil, apperr.Invalid("unsupported file type")
	}
	if contentType == "" || contentType == "application/octet-stream" {
		if byExtension := mime.TypeByExtension("." + extension); byExtension != "" {
			contentType = byExtension
		} else {
			contentType = "application/octet-stream"
		}
	}

	name := storage.GenerateFileName(extension)
	sizeWriter := storage.NewSizeWriter()
	source := &uploadReader{r: reader}
	teeReader := io.TeeReader(source, sizeWriter)

	writeCloser, err := s.storage.Create(ctx, name, contentType)
	if err != nil {
		return nil, apperr.Upstream("failed to store file", err)
	}

	if _, err := io.Copy(writeCloser, teeReader); err != nil {
		writeCloser.Close()
		s.cleanup(ctx, name)
		if source.err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(source.err, &maxBytesErr) {
				return nil, apperr.Invalid("file too large")
			}
			if errors.Is(source.err, os.ErrDeadlineExceeded) {
				return nil, apperr.Invalid("upload timed out")
			}
			return nil, apperr.Invalid("failed to read uploaded file")
		}
		return nil, apperr.Upstream("failed to store file", err)
	}
	if err := writeCloser.Close(); err != nil {
		s.cleanup(ctx, name)
		return nil, apperr.Upstream("failed to store file", err)
	}

	media := &models.Media{
		ID:          name,
		EducatorID:  educatorID,
		ContentType: contentType,
		Size:        sizeWriter.Size(),
		URL:         s.storage.URL(name),
		Backend:     s.storage.Backend(),
	}
	if err := s.mediaRepo.Create(ctx, media); err != nil {
		s.cleanup(ctx, name)
		return nil, fmt.Errorf("failed to save media metadata: %w", err)
	}

	return &models.UploadResponse{
		ID:          media.ID,
		URL:         media.URL,
		Size:        media.Size,
		ContentType: media.ContentType,
	}, nil
}

// uploadReader remembers read failures so they are not blamed on the backend
type uploadReader struct {
	r   io.Reader
	err error
}

func (u *uploadReader) Read(p []byte) (int, error) {
	n, err := u.r.Read(p)
	if err != nil && err != io.EOF {
		u.err = err
	}
	return n, err
}

// cleanup removes a stored file whose upload did not complete
func (s *mediaService) cleanup(ctx context.Context, name string) {
	if err := s.storage.Delete(context.WithoutCancel(ctx), name); err != nil {
		s.logger.Warn("failed to remove incomplete upload", zap.String("name", name), zap.Error(err))
	}
}
