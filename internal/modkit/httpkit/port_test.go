package httpkit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "enrollgate/internal/platform/errors"
)

func req(auth string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		r.Header.Set("Authorization", auth)
	}
	return r
}

func TestBearer(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for h, want := range cases {
		got, err := Bearer(req(h))
		if got != want || (want == "") != (err != nil) {
			t.Fatalf("%q: got %q %v", h, got, err)
		}
	}
}

func TestPortParse(t *testing.T) {
	t.Parallel()
	p := NewPortFunc(func(tok string) (string, string, error) {
		switch tok {
		case "ok":
			return "admin-1", RoleAdmin, nil
		case "nosub":
			return "", RoleAdmin, nil
		}
		return "", "", errors.New("signature is invalid")
	})

	if sub, role, err := p.Parse(req("Bearer ok")); err != nil || sub != "admin-1" || role != RoleAdmin {
		t.Fatalf("got %q %q %v", sub, role, err)
	}
	for _, h := range []string{"Bearer bad", "Bearer nosub", ""} {
		_, _, err := p.Parse(req(h))
		if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
			t.Fatalf("%q: err = %v", h, err)
		}
		if e, _ := perr.As(err); e.Message() == "signature is invalid" {
			t.Fatalf("verifier reason leaked")
		}
	}

	var nilPort *Port
	if _, _, err := nilPort.Parse(req("Bearer ok")); !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("nil port err = %v", err)
	}
}
