// Package module wires meta endpoints into the API
package module

import (
	"time"

	modkit "enrollgate/internal/modkit"
	"enrollgate/internal/modkit/httpkit"
	"enrollgate/internal/platform/store"

	metahttp "enrollgate/internal/services/api/meta/http"
)

// Module implements modkit.Module
type Module struct {
	b    modkit.Built
	deps metahttp.Deps
}

// New constructs the meta module; service names the binary in health and version payloads
func New(deps modkit.Deps, service string, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	d := metahttp.Deps{ServiceName: service, StartedAt: time.Now()}
	if p, ok := deps.PG.(store.Pinger); ok {
		d.PG = p
	}
	if deps.CH != nil {
		d.CH = deps.CH
	}
	return &Module{b: b, deps: d}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.b.Name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return nil }
