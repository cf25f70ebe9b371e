// Package version reports build metadata stamped at link time
package version

// BuildInfo is the build metadata served by the meta endpoints and the admin CLI
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Set with -ldflags "-X 'enrollgate/internal/core/version.version=v0.1.0' -X ...commit=abcd -X ...date=2026-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns build metadata for service
func Info(service string) BuildInfo {
	return BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
}

// Version returns the stamped release version
func Version() string { return version }
