package client

import (
	"fmt"
	"net/http"

	"github.com/coursehub/backend/libs/apperr"
	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx answer from the API
//
// errors.Is matches it against the apperr kinds, so callers can write
// errors.Is(err, apperr.ErrForbidden) on both sides of the wire.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Is maps the HTTP status back to its error kind
func (e *APIError) Is(target error) bool {
	switch e.Status {
	case http.StatusUnauthorized:
		return target == apperr.ErrUnauthenticated
	case http.StatusForbidden:
		return target == apperr.ErrForbidden
	case http.StatusNotFound:
		return target == apperr.ErrNotFound
	case http.StatusConflict:
		return target == apperr.ErrConflict
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return target == apperr.ErrInvalid
	case http.StatusBadGateway:
		return target == apperr.ErrUpstream
	}
	return false
}

func newAPIError(resp *resty.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*errorResponse); ok && body != nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}
	return apiErr
}
