package ch

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"enrollgate/internal/core/version"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo identifies this process in system.query_log
func BuildClientInfo(app, role string) clickhouse.ClientInfo {
	if app == "" {
		app = "enrollgate"
	}
	host, _ := os.Hostname()

	info := clickhouse.ClientInfo{}
	for _, p := range [][2]string{
		{app, version.Version()},
		{"role", role},
		{"go", runtime.Version()},
		{"commit", vcsShortSHA()},
		{"host", host},
	} {
		if v := strings.TrimSpace(p[1]); v != "" {
			info.Products = append(info.Products, struct{ Name, Version string }{p[0], v})
		}
	}
	return info
}

func vcsShortSHA() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return ""
}
