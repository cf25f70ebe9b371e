package httpkit

import (
	"net/http"
	"strings"

	perr "enrollgate/internal/platform/errors"
	pnet "enrollgate/internal/platform/net"
)

// Subject returns the authenticated subject id
func Subject(r *http.Request) (string, error) {
	if s := pnet.Subject(r.Context()); s != "" {
		return s, nil
	}
	return "", perr.Unauthorizedf("missing bearer token")
}

// Role returns the authenticated role, empty when unauthenticated
func Role(r *http.Request) string { return pnet.Role(r.Context()) }

// Bearer returns the raw token from a case-insensitive "Bearer" Authorization header
func Bearer(r *http.Request) (string, error) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	tok = strings.TrimSpace(tok)
	if !ok || !strings.EqualFold(scheme, "bearer") || tok == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	return tok, nil
}
