package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/coursehub/backend/libs/apperr"
	"github.com/coursehub/backend/libs/middlewares"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondServiceError maps a service error to its status and logs it
//
// Classified errors keep their message; anything else becomes a 500 with a generic body.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := apperr.HTTPStatus(err)
	fields := []zap.Field{
		zap.String("request_id", middlewares.GetRequestID(r.Context())),
		zap.String("op", op),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.Logger.Error("request failed", fields...)
	} else {
		h.Logger.Warn("request rejected", fields...)
	}

	h.RespondError(w, status, apperr.PublicMessage(err))
}

// DecodeJSON decodes the request body into dst
func (h *BaseHandler) DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return apperr.Invalid("request body too large")
		}
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("request body is required")
		}
		return apperr.Invalid("invalid request body")
	}
	return nil
}

// URLParamInt parses a positive integer path parameter
func (h *BaseHandler) URLParamInt(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || value <= 0 {
		return 0, apperr.Invalid(fmt.Sprintf("invalid %s", name))
	}
	return value, nil
}
