package module

import (
	"time"

	"enrollgate/internal/platform/config"
)

// Options controls access service behavior
type Options struct {
	// LockTimeout bounds waits on pair and row locks inside a resolution
	LockTimeout time.Duration
}

// FromConfig reads ACCESS_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	ac := cfg.Prefix("ACCESS_")
	return Options{
		LockTimeout: ac.MayDuration("LOCK_TIMEOUT", 2*time.Second),
	}
}
