package middlewares

import (
	"net/http"
)

// Body limits used by the API router
const (
	DefaultMaxRequestSize = 1 << 20   // 1MB for JSON bodies
	UploadMaxRequestSize  = 512 << 20 // 512MB for media uploads
)

// RequestSizeLimitMiddleware rejects requests whose declared body exceeds maxRequestSize
// and caps the body reader for the rest
func RequestSizeLimitMiddleware(maxRequestSize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxRequestSize {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				w.Write([]byte(`{"error":"request body too large"}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
			next.ServeHTTP(w, r)
		})
	}
}
