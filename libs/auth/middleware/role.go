package middleware

import (
	"net/http"
)

// RoleMiddleware validates the access token and requires its role to equal requiredRole
//
// Educator and student are disjoint principal types, so there is no role hierarchy:
// a student token on an educator route is rejected with 403 and vice versa.
func RoleMiddleware(validator TokenValidator, requiredRole string) func(http.Handler) http.Handler {
	return authenticate(validator, requiredRole)
}
