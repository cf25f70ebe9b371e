package store

import (
	"context"
	"errors"
	"time"

	perr "enrollgate/internal/platform/errors"
	"enrollgate/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is what both *pgxpool.Pool and pgx.Tx provide
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// traced wraps a pgxQuerier and reports every statement to the tracer
type traced struct {
	q      pgxQuerier
	tracer pg.QueryTracer
	slowMs int
}

func (t traced) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := t.q.Exec(ctx, sql, args...)
	t.emit(ctx, sql, args, start, err)
	return ct, err
}

func (t traced) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := t.q.Query(ctx, sql, args...)
	t.emit(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rows{rs}, nil
}

func (t traced) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	r := t.q.QueryRow(ctx, sql, args...)
	return row{r: r, after: func(err error) { t.emit(ctx, sql, args, start, err) }}
}

func (t traced) emit(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if t.tracer == nil {
		return
	}
	us := time.Since(start).Microseconds()
	if errors.Is(err, pgx.ErrNoRows) {
		err = nil
	}
	t.tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:       sql,
		Args:      args,
		ElapsedUS: us,
		Err:       err,
		Slow:      t.slowMs >= 0 && us >= int64(t.slowMs)*1000,
	})
}

// pgAdapter is the TxRunner over a pool
type pgAdapter struct {
	traced
	p       *pg.PG
	retries int
}

func newPGAdapter(p *pg.PG, retries int) *pgAdapter {
	return &pgAdapter{
		traced:  traced{q: p.Pool, tracer: p.Tracer, slowMs: p.SlowMs},
		p:       p,
		retries: retries,
	}
}

// Ping round-trips a trivial statement
func (a *pgAdapter) Ping(ctx context.Context) error {
	var one int
	return a.QueryRow(ctx, "SELECT 1").Scan(&one)
}

// Close closes the pool
func (a *pgAdapter) Close() error { a.p.Close(); return nil }

// Tx runs fn in a transaction, replaying it when postgres aborts with a retryable error
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	var err error
	for attempt := 0; attempt <= a.retries; attempt++ {
		err = pgx.BeginFunc(ctx, a.p.Pool, func(tx pgx.Tx) error {
			return fn(traced{q: tx, tracer: a.tracer, slowMs: a.slowMs})
		})
		if err == nil || !perr.IsRetryable(err) {
			return err
		}
	}
	return err
}

type row struct {
	r     pgx.Row
	after func(error)
}

func (x row) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	x.after(err)
	return err
}

// rows narrows pgx.Rows to the Rows seam
type rows struct{ pgx.Rows }
