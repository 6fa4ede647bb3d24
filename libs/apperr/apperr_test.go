package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "nil", err: nil, expectedStatus: http.StatusOK},
		{name: "unauthenticated", err: Unauthenticated("invalid email or password"), expectedStatus: http.StatusUnauthorized},
		{name: "forbidden", err: Forbidden("you do not have rights to manage this course"), expectedStatus: http.StatusForbidden},
		{name: "not found", err: NotFound("course not found"), expectedStatus: http.StatusNotFound},
		{name: "conflict", err: Conflict("already enrolled in this course"), expectedStatus: http.StatusConflict},
		{name: "invalid", err: Invalid("title is required"), expectedStatus: http.StatusBadRequest},
		{name: "upstream", err: Upstream("failed to store file", errors.New("gcs down")), expectedStatus: http.StatusBadGateway},
		{name: "wrapped kind", err: fmt.Errorf("service: %w", NotFound("lesson not found")), expectedStatus: http.StatusNotFound},
		{name: "unclassified", err: errors.New("connection refused"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, HTTPStatus(tt.err))
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("bucket unavailable")
	err := Upstream("failed to store file", cause)

	assert.True(t, errors.Is(err, ErrUpstream))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "failed to store file", err.Error())
}

func TestError_ErrorFallbacks(t *testing.T) {
	assert.Equal(t, "boom", New(ErrUpstream, "", errors.New("boom")).Error())
	assert.Equal(t, "not found", New(ErrNotFound, "", nil).Error())
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "course not found", PublicMessage(fmt.Errorf("wrap: %w", NotFound("course not found"))))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("sql: connection reset")))
}
