package httpkit

import (
	"net/http"

	phttp "enrollgate/internal/platform/net/http"
	"enrollgate/internal/platform/net/middleware"
)

// Auth wires the auth middleware to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}

// RequireRole admits only the given roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return middleware.RequireRole(phttp.JSON, roles...)
}
