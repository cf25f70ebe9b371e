package httpkit

import (
	"net/http"

	perr "enrollgate/internal/platform/errors"
	"enrollgate/internal/platform/net/middleware"
)

// TokenFunc verifies a bearer token and returns its subject and role
type TokenFunc func(token string) (subject string, role string, err error)

// Port implements middleware.AuthPort over a TokenFunc
type Port struct {
	parse TokenFunc
}

var _ middleware.AuthPort = (*Port)(nil)

// NewPortFunc builds a Port from fn
func NewPortFunc(fn TokenFunc) *Port { return &Port{parse: fn} }

// Parse reads the bearer token and delegates to the TokenFunc
// Every failure is a plain 401; the verifier's reason is not echoed
func (p *Port) Parse(r *http.Request) (string, string, error) {
	tok, err := Bearer(r)
	if err != nil {
		return "", "", err
	}
	if p == nil || p.parse == nil {
		return "", "", perr.Unauthorizedf("invalid bearer token")
	}
	sub, role, err := p.parse(tok)
	if err != nil || sub == "" {
		return "", "", perr.Unauthorizedf("invalid bearer token")
	}
	return sub, role, nil
}
