package middleware

import (
	"net/http"
	"slices"

	perr "enrollgate/internal/platform/errors"
	"enrollgate/internal/platform/logger"
	pnet "enrollgate/internal/platform/net"
)

// AuthPort resolves the caller of a request
// The identity collaborator implements it; this service only consumes subject and role
type AuthPort interface {
	Parse(r *http.Request) (subject string, role string, err error)
}

// Writer renders a status and body
type Writer func(w http.ResponseWriter, status int, body any)

// Auth rejects requests the port cannot resolve and stores subject and role on the context
func Auth(p AuthPort, write Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			sub, role, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithSubject(r.Context(), sub, role)
			ctx = logger.WithActor(ctx, sub, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets through only callers whose role is one of roles; others get 403
// Must run after Auth
func RequireRole(write Writer, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if pnet.Subject(ctx) == "" {
				status, body := pnet.Error(perr.Unauthorizedf("missing bearer token"), pnet.RequestID(ctx))
				write(w, status, body)
				return
			}
			if !slices.Contains(roles, pnet.Role(ctx)) {
				logger.C(ctx).Warn().Strs("want", roles).Msg("role check failed")
				status, body := pnet.Error(perr.Forbiddenf("insufficient role"), pnet.RequestID(ctx))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
