// Package module wires access requests and enrollments into the API using modkit
package module

import (
	"context"

	modkit "enrollgate/internal/modkit"
	"enrollgate/internal/modkit/httpkit"
	"enrollgate/internal/platform/net/middleware"
	ahttp "enrollgate/internal/services/api/access/http"
	arepo "enrollgate/internal/services/api/access/repo"
	asvc "enrollgate/internal/services/api/access/service"
)

// Module implements the access API module
type Module struct {
	b    modkit.Built
	auth middleware.AuthPort
	svc  asvc.Service
}

// Ports declares what the module needs injected
type Ports struct {
	Auth middleware.AuthPort
}

// Exports is what other modules may call
type Exports struct {
	Service asvc.Service
}

// New constructs the access module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("access"),
		modkit.WithPrefix("/access"),
	}, opts...)...)

	injected, _ := b.Ports.(Ports)
	if injected.Auth == nil {
		panic("access module requires an Auth port")
	}

	cfg := FromConfig(deps.Cfg)

	var m *asvc.Metrics
	if deps.Metrics != nil {
		m = asvc.NewMetrics(deps.Metrics.Registry)
	}

	svc := asvc.New(deps.PG, arepo.NewPG(), asvc.Options{
		Events:      asvc.NewClickhouseSink(deps.CH),
		Metrics:     m,
		LockTimeout: cfg.LockTimeout,
	})

	return &Module{b: b, auth: injected.Auth, svc: svc}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { ahttp.Register(rr, m.svc, m.auth) })
}

// Ports exposes the service to the composition root
func (m *Module) Ports() any { return Exports{Service: m.svc} }

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Migrate applies the relational schema and, when clickhouse is configured, the audit table
func Migrate(ctx context.Context, deps modkit.Deps) error {
	if err := arepo.Migrate(ctx, deps.PG); err != nil {
		return err
	}
	if deps.CH != nil {
		return deps.CH.Exec(ctx, arepo.EventsSchema)
	}
	return nil
}
