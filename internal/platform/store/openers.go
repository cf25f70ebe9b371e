package store

import (
	"context"
	"fmt"
	"time"

	"enrollgate/internal/platform/logger"
	chx "enrollgate/internal/platform/store/ch"
	"enrollgate/internal/platform/store/pg"
)

const (
	defaultConnectAttempts = 20
	defaultPingTimeout     = 3 * time.Second
	backoffStart           = 150 * time.Millisecond
	backoffCeiling         = 2 * time.Second
)

// openPG opens the pool and publishes the adapter only once the server answers a ping
func openPG(ctx context.Context, cfg PGConfig, app string, log logger.Logger) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.LogSQL {
		tracer = pg.Tracer(log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.URL,
		MaxConns: cfg.MaxConns,
		SlowMs:   cfg.SlowQueryMs,
		AppName:  app,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = defaultConnectAttempts
	}
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	err = retryPing(ctx, attempts, timeout, p.Pool.Ping, func(i int, err error) {
		log.Debug().Err(err).Int("attempt", i+1).Msg("postgres not ready")
	})
	if err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p, cfg.TxRetries), nil
}

func openCH(ctx context.Context, cfg Config, log logger.Logger) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, AppName: cfg.AppName, Role: cfg.Role})
	if err != nil {
		return nil, err
	}
	log.Info().Msg("clickhouse connected")
	return c, nil
}

// retryPing calls ping with exponential backoff until it succeeds, ctx ends, or attempts run out
func retryPing(ctx context.Context, attempts int, timeout time.Duration, ping func(context.Context) error, onFail func(int, error)) error {
	var last error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		last = ping(pctx)
		cancel()
		if last == nil {
			return nil
		}
		if onFail != nil {
			onFail(i, last)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, backoffCeiling)
	}
	return fmt.Errorf("ping failed after %d attempts: %w", attempts, last)
}
