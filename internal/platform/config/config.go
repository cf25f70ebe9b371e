// Package config reads process settings from environment variables
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"enrollgate/internal/platform/logger"
)

// Conf is a namespaced view over environment variables, e.g. Prefix("CORE_API_")
type Conf struct{ prefix string }

// New creates a root Conf
func New() Conf { return Conf{} }

// Prefix returns a child Conf with p appended to the current prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Key returns the fully qualified variable name
func (c Conf) Key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.Key(k))) }

// may parses a value with parse, falling back to def when unset or malformed
func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.Key(key)).Str("value", s).Interface("default", def).
			Msg("invalid config value; using default")
		return def
	}
	return v
}

// must parses a required value with parse, panicking when unset or malformed
func must[T any](c Conf, key, hint string, parse func(string) (T, error)) T {
	s := c.lookup(key)
	if s == "" {
		logger.Get().Panic().Str("key", c.Key(key)).Msg("missing required env")
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Panic().Err(err).Str("key", c.Key(key)).Str("value", s).Msg(hint)
	}
	return v
}

func ident(s string) (string, error) { return s, nil }

// MustString panics if key is unset or blank
func (c Conf) MustString(key string) string { return must(c, key, "missing required env", ident) }

// MustInt panics if key is unset or not an integer
func (c Conf) MustInt(key string) int { return must(c, key, "invalid int value", strconv.Atoi) }

// MustDuration panics if key is unset or not a Go duration
func (c Conf) MustDuration(key string) time.Duration {
	return must(c, key, "invalid duration (e.g. 250ms, 2s, 1h)", time.ParseDuration)
}

// MustURL panics if key is unset or not an absolute URL
func (c Conf) MustURL(key string) *url.URL {
	return must(c, key, "invalid absolute URL", parseAbsURL)
}

// MustPort validates 1..65535 and returns a listen address like ":4000"
func (c Conf) MustPort(key string) string { return must(c, key, "invalid TCP port", parsePort) }

// MayString returns the value or def when blank
func (c Conf) MayString(key, def string) string { return may(c, key, def, ident) }

// MayInt returns the value or def; malformed input is logged and ignored
func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

// MayBool returns the value or def; malformed input is logged and ignored
func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration returns the value or def; malformed input is logged and ignored
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayURL returns the parsed absolute URL or nil when blank or malformed
func (c Conf) MayURL(key string) *url.URL { return may[*url.URL](c, key, nil, parseAbsURL) }

// MayPort returns a listen address for key, or ":"+def when unset
func (c Conf) MayPort(key string, def int) string {
	return may(c, key, ":"+strconv.Itoa(def), parsePort)
}

// MayCSV splits a comma separated value, dropping blanks
func (c Conf) MayCSV(key string, def []string) []string {
	out := may(c, key, def, func(s string) ([]string, error) {
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		return parts, nil
	})
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value when it is one of allowed, def when blank, and panics otherwise
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(a)
		}
	}
	if v == "" {
		return v
	}
	logger.Get().Panic().Str("key", c.Key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}

func parseAbsURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, &url.Error{Op: "parse", URL: s, Err: errNotAbsolute}
	}
	return u, nil
}

func parsePort(s string) (string, error) {
	p, err := strconv.Atoi(s)
	if err != nil {
		return "", err
	}
	if p < 1 || p > 65535 {
		return "", errPortRange
	}
	return ":" + s, nil
}

type confErr string

func (e confErr) Error() string { return string(e) }

const (
	errNotAbsolute confErr = "url is not absolute"
	errPortRange   confErr = "port out of range 1..65535"
)
