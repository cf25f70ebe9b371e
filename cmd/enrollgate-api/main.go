// @title         enrollgate API
// @version       0.1.0
// @description   Access requests, review and enrollments for courses and question banks

package main

import (
	"context"
	"os/signal"
	"syscall"

	"enrollgate/internal/core/version"
	"enrollgate/internal/platform/config"
	"enrollgate/internal/platform/logger"
	"enrollgate/internal/platform/metrics"
	phttp "enrollgate/internal/platform/net/http"
	"enrollgate/internal/platform/store"

	"enrollgate/internal/modkit/repokit"
	"enrollgate/internal/services/api"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	l := logger.Get()
	l.Info().Str("version", version.Version()).Msg("starting " + api.ServiceName)

	chOn := chCfg.MayBool("ENABLED", false)
	chURL := ""
	if chOn {
		chURL = chCfg.MustString("DBURL")
	}

	st, err := store.Open(ctx, store.Config{
		AppName: api.ServiceName,
		Role:    "api",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 8)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			TxRetries:   pgCfg.MayInt("TX_RETRIES", 2),
		},
		CH: store.CHConfig{Enabled: chOn, URL: chURL},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	var reg *metrics.Registry
	if apiCfg.MayBool("METRICS", true) {
		reg = metrics.New()
	}

	srv := phttp.NewServer(apiCfg)
	err = api.Mount(ctx, srv.Router(), api.Options{
		Config:         apiCfg,
		Root:           root,
		Store:          st,
		Logger:         l,
		Metrics:        reg,
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
		AutoMigrate:    apiCfg.MayBool("AUTO_MIGRATE", false),
	})
	if err != nil {
		l.Panic().Err(err).Msg("api.Mount failed")
	}

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
