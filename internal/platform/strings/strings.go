// Package strings holds small string guards used during wiring and in SQL args
package strings

import std "strings"

// MustString returns s, panicking with name when s is blank
func MustString(s, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix normalises a route prefix to a single leading slash and no trailing slash
// It panics on an empty or root prefix
func MustPrefix(s string) string {
	s = "/" + std.Trim(std.TrimSpace(s), "/ ")
	if s == "/" {
		panic("route prefix is required")
	}
	return s
}

// SQLNull returns nil for blank s so the column stores NULL
func SQLNull(s string) any {
	if std.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// Deref returns *ps or "" when ps is nil
func Deref(ps *string) string {
	if ps == nil {
		return ""
	}
	return *ps
}
