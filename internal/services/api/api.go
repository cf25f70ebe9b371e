// Package api composes the HTTP API from its modules
package api

import (
	"context"
	"fmt"
	"time"

	"enrollgate/internal/modkit"
	"enrollgate/internal/modkit/httpkit"
	"enrollgate/internal/modkit/swaggerkit"
	"enrollgate/internal/platform/config"
	"enrollgate/internal/platform/logger"
	"enrollgate/internal/platform/metrics"
	phttp "enrollgate/internal/platform/net/http"
	"enrollgate/internal/platform/net/middleware"
	"enrollgate/internal/platform/store"

	accessmod "enrollgate/internal/services/api/access/module"
	metamod "enrollgate/internal/services/api/meta/module"
)

// ServiceName identifies the API in meta payloads and clickhouse client info
const ServiceName = "enrollgate-api"

// Options are the API options
type Options struct {
	Config  config.Conf // CORE_API_* namespace
	Root    config.Conf // unprefixed, for module namespaces such as ACCESS_*
	Store   *store.Store
	Logger  *logger.Logger
	Metrics *metrics.Registry // nil disables /metrics and resolver counters

	// Auth overrides the JWT port built from CORE_API_JWT_*; tests inject a fake
	Auth middleware.AuthPort

	EnableSwagger  bool
	EnableProfiler bool
	AutoMigrate    bool
}

// Mount builds the modules and mounts them onto r under /api/v1
func Mount(ctx context.Context, r phttp.Router, opt Options) error {
	deps := modkit.Deps{
		Cfg:     opt.Root,
		PG:      opt.Store.PG,
		CH:      opt.Store.CH,
		Metrics: opt.Metrics,
	}
	if opt.Logger == nil {
		opt.Logger = logger.Named("api")
	}
	deps.Log = *opt.Logger

	if opt.AutoMigrate {
		mctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := accessmod.Migrate(mctx, deps); err != nil {
			return fmt.Errorf("migrate access: %w", err)
		}
		deps.Log.Info().Msg("schema applied")
	}

	auth := opt.Auth
	if auth == nil {
		auth = httpkit.NewPortFunc(httpkit.JWT(httpkit.JWTConfig{
			Secret: []byte(opt.Config.MustString("JWT_SECRET")),
			Issuer: opt.Config.MayString("JWT_ISSUER", ""),
			Leeway: 30 * time.Second,
		}))
	}

	mods := []modkit.Module{
		metamod.New(deps, ServiceName),
		accessmod.New(deps, modkit.WithPorts(accessmod.Ports{Auth: auth})),
	}

	if opt.Metrics != nil {
		r.Use(opt.Metrics.Middleware)
		opt.Metrics.Mount(r, "/metrics", true)
	}
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	stack := middleware.Stack(phttp.JSON, middleware.CORSOptions{
		AllowedOrigins: opt.Config.MayCSV("CORS_ORIGINS", nil),
	}, opt.Config.MayDuration("SLOW_REQUEST", time.Second))

	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
			deps.Log.Debug().Str("module", m.Name()).Msg("module mounted")
		}
	})
	return nil
}
