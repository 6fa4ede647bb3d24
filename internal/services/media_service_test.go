package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/libs/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockStorage is an in-memory implementation of Storage
type mockStorage struct {
	files       map[string]*bytes.Buffer
	contentType map[string]string
	createErr   error
	writeErr    error
	closeErr    error
	deleted     []string
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		files:       make(map[string]*bytes.Buffer),
		contentType: make(map[string]string),
	}
}

type mockWriteCloser struct {
	buf      *bytes.Buffer
	writeErr error
	closeErr error
}

func (w *mockWriteCloser) Write(p []byte) (int, error) {
	if w.writeErr != nil {
		return 0, w.writeErr
	}
	return w.buf.Write(p)
}

func (w *mockWriteCloser) Close() error {
	return w.closeErr
}

func (m *mockStorage) Create(ctx context.Context, name, contentType string) (io.WriteCloser, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	buf := &bytes.Buffer{}
	m.files[name] = buf
	m.contentType[name] = contentType
	return &mockWriteCloser{buf: buf, writeErr: m.writeErr, closeErr: m.closeErr}, nil
}

func (m *mockStorage) Delete(ctx context.Context, name string) error {
	m.deleted = append(m.deleted, name)
	delete(m.files, name)
	return nil
}

func (m *mockStorage) URL(name string) string {
	return "http://localhost:8080/media/" + name
}

func (m *mockStorage) Backend() string {
	return "local"
}

// mockMediaRepository is a mock implementation of MediaRepository
type mockMediaRepository struct {
	created *models.Media
	err     error
}

func (m *mockMediaRepository) Create(ctx context.Context, media *models.Media) error {
	if m.err != nil {
		return m.err
	}
	m.created = media
	return nil
}

// failingReader returns some bytes and then fails
type failingReader struct {
	sent bool
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "partial"), nil
	}
	if r.err != nil {
		return 0, r.err
	}
	return 0, errors.New("connection reset")
}

func TestMediaService_Upload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store := newMockStorage()
		repo := &mockMediaRepository{}
		svc := NewMediaService(repo, store, zap.NewNop())

		resp, err := svc.Upload(context.Background(), 7, strings.NewReader("fake png bytes"), "Cover.PNG", "")

		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(resp.ID, ".png"))
		assert.Equal(t, int64(len("fake png bytes")), resp.Size)
		assert.Equal(t, "image/png", resp.ContentType)
		assert.Equal(t, "http://localhost:8080/media/"+resp.ID, resp.URL)
		assert.Equal(t, "fake png bytes", store.files[resp.ID].String())
		assert.Equal(t, "image/png", store.contentType[resp.ID])

		require.NotNil(t, repo.created)
		assert.Equal(t, 7, repo.created.EducatorID)
		assert.Equal(t, "local", repo.created.Backend)
		assert.Equal(t, resp.ID, repo.created.ID)
	})

	t.Run("keeps the client content type", func(t *testing.T) {
		svc := NewMediaService(&mockMediaRepository{}, newMockStorage(), zap.NewNop())

		resp, err := svc.Upload(context.Background(), 7, strings.NewReader("x"), "clip.mp4", "video/mp4")

		require.NoError(t, err)
		assert.Equal(t, "video/mp4", resp.ContentType)
	})

	tests := []struct {
		name          string
		reader        io.Reader
		filename      string
		store         *mockStorage
		repo          *mockMediaRepository
		expectedKind  error
		errorContains string
		expectCleanup bool
	}{
		{
			name:         "unsupported extension",
			reader:       strings.NewReader("#!/bin/sh"),
			filename:     "script.sh",
			store:        newMockStorage(),
			repo:         &mockMediaRepository{},
			expectedKind: apperr.ErrInvalid,
		},
		{
			name:         "no extension",
			reader:       strings.NewReader("data"),
			filename:     "README",
			store:        newMockStorage(),
			repo:         &mockMediaRepository{},
			expectedKind: apperr.ErrInvalid,
		},
		{
			name:     "backend refuses the file",
			reader:   strings.NewReader("data"),
			filename: "doc.pdf",
			store: func() *mockStorage {
				s := newMockStorage()
				s.createErr = errors.New("bucket unavailable")
				return s
			}(),
			repo:         &mockMediaRepository{},
			expectedKind: apperr.ErrUpstream,
		},
		{
			name:     "backend write fails",
			reader:   strings.NewReader("data"),
			filename: "doc.pdf",
			store: func() *mockStorage {
				s := newMockStorage()
				s.writeErr = errors.New("disk full")
				return s
			}(),
			repo:          &mockMediaRepository{},
			expectedKind:  apperr.ErrUpstream,
			expectCleanup: true,
		},
		{
			name:     "backend close fails",
			reader:   strings.NewReader("data"),
			filename: "doc.pdf",
			store: func() *mockStorage {
				s := newMockStorage()
				s.closeErr = errors.New("upload aborted")
				return s
			}(),
			repo:          &mockMediaRepository{},
			expectedKind:  apperr.ErrUpstream,
			expectCleanup: true,
		},
		{
			name:          "client connection drops",
			reader:        &failingReader{},
			filename:      "doc.pdf",
			store:         newMockStorage(),
			repo:          &mockMediaRepository{},
			expectedKind:  apperr.ErrInvalid,
			errorContains: "failed to read uploaded file",
			expectCleanup: true,
		},
		{
			name:          "upload window elapses",
			reader:        &failingReader{err: fmt.Errorf("read tcp: %w", os.ErrDeadlineExceeded)},
			filename:      "clip.mp4",
			store:         newMockStorage(),
			repo:          &mockMediaRepository{},
			expectedKind:  apperr.ErrInvalid,
			errorContains: "upload timed out",
			expectCleanup: true,
		},
		{
			name:          "file exceeds the body limit",
			reader:        http.MaxBytesReader(httptest.NewRecorder(), io.NopCloser(strings.NewReader("0123456789")), 4),
			filename:      "doc.pdf",
			store:         newMockStorage(),
			repo:          &mockMediaRepository{},
			expectedKind:  apperr.ErrInvalid,
			errorContains: "file too large",
			expectCleanup: true,
		},
		{
			name:          "metadata insert fails",
			reader:        strings.NewReader("data"),
			filename:      "archive.zip",
			store:         newMockStorage(),
			repo:          &mockMediaRepository{err: errors.New("database error")},
			errorContains: "failed to save media metadata",
			expectCleanup: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMediaService(tt.repo, tt.store, zap.NewNop())

			resp, err := svc.Upload(context.Background(), 7, tt.reader, tt.filename, "")

			assert.Error(t, err)
			assert.Nil(t, resp)
			if tt.expectedKind != nil {
				assert.ErrorIs(t, err, tt.expectedKind)
			}
			if tt.errorContains != "" {
				assert.Contains(t, err.Error(), tt.errorContains)
			}
			if tt.expectCleanup {
				assert.Len(t, tt.store.deleted, 1)
				assert.Empty(t, tt.store.files)
			} else {
				assert.Empty(t, tt.store.deleted)
			}
			assert.Nil(t, tt.repo.created)
		})
	}
}
