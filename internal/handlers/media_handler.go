package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/libs/apperr"
	authMiddleware "github.com/coursehub/backend/libs/auth/middleware"
	"github.com/coursehub/backend/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MediaService defines the interface for media upload operations
type MediaService interface {
	// Method Upload streams a file to the configured storage backend and records its metadata.
	//
	// "reader" parameter is the file content.
	// "filename" parameter is the client file name; only its extension is used.
	// "contentType" parameter is the declared content type, possibly empty.
	//
	// An unsupported file type yields an invalid error, a backend failure an upstream error.
	Upload(ctx context.Context, educatorID int, reader io.Reader, filename, contentType string) (*models.UploadResponse, error)
}

// MediaHandler handles media upload requests
type MediaHandler struct {
	handlers.BaseHandler
	mediaService  MediaService
	uploadTimeout time.Duration
}

// NewMediaHandler creates a new media handler
//
// "uploadTimeout" replaces the server read and write deadlines for an upload; zero keeps them.
func NewMediaHandler(mediaService MediaService, uploadTimeout time.Duration, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{
		BaseHandler:   handlers.BaseHandler{Logger: logger},
		mediaService:  mediaService,
		uploadTimeout: uploadTimeout,
	}
}

// RegisterRoutes registers the upload route; uploadMiddlewares run in order after the router ones
func (h *MediaHandler) RegisterRoutes(r chi.Router, uploadMiddlewares ...func(http.Handler) http.Handler) {
	r.With(uploadMiddlewares...).Post("/educator/upload", h.Upload)
}

// Upload handles POST /educator/upload
// @Summary Upload a media file
// @Description Upload a thumbnail, video or document; returns its public URL
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "File to upload"
// @Success 201 {object} models.UploadResponse
// @Failure 400 {object} map[string]string "Missing or unsupported file"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Failure 502 {object} map[string]string "Storage backend failure"
// @Router /educator/upload [post]
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	educatorID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.RespondServiceError(w, r, "upload", apperr.Unauthenticated("authentication required"))
		return
	}

	h.extendDeadlines(w)

	// The part is streamed instead of being buffered by ParseMultipartForm
	reader, err := r.MultipartReader()
	if err != nil {
		h.RespondServiceError(w, r, "upload", apperr.Invalid("multipart form data is required"))
		return
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				h.RespondServiceError(w, r, "upload", apperr.Invalid("file too large"))
				return
			}
			h.RespondServiceError(w, r, "upload", apperr.Invalid("failed to parse request"))
			return
		}
		if part.FormName() != "file" || part.FileName() == "" {
			part.Close()
			continue
		}

		resp, err := h.mediaService.Upload(r.Context(), educatorID, part, part.FileName(), part.Header.Get("Content-Type"))
		part.Close()
		if err != nil {
			h.RespondServiceError(w, r, "upload", err)
			return
		}

		h.Logger.Info("media uploaded",
			zap.String("id", resp.ID),
			zap.Int("educator_id", educatorID),
			zap.Int64("size", resp.Size),
		)
		h.RespondJSON(w, http.StatusCreated, resp)
		return
	}

	h.RespondServiceError(w, r, "upload", apperr.Invalid("file is required"))
}

// extendDeadlines gives a large file more time than the server-wide timeouts allow
func (h *MediaHandler) extendDeadlines(w http.ResponseWriter) {
	if h.uploadTimeout <= 0 {
		return
	}
	deadline := time.Now().Add(h.uploadTimeout)
	rc := http.NewResponseController(w)
	if err := rc.SetReadDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.Logger.Warn("failed to extend upload read deadline", zap.Error(err))
	}
	if err := rc.SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.Logger.Warn("failed to extend upload write deadline", zap.Error(err))
	}
}
