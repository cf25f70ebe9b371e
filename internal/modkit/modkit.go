package modkit

import (
	phttp "enrollgate/internal/platform/net/http"
)

// Module is the surface every API module exposes to the composition root
type Module interface {
	// MountRoutes mounts the module under its prefix on r
	MountRoutes(r phttp.Router)
	// Ports returns the module's exported port set, or nil
	Ports() any
	// Name returns the module name used in logs
	Name() string
}
