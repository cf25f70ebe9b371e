package store

import (
	"context"
	"errors"
	"testing"

	"enrollgate/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type scanFunc func(dst ...any) error

func (f scanFunc) Scan(dst ...any) error { return f(dst...) }

type stubPgx struct {
	execErr error
	rowErr  error
}

func (s stubPgx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("DELETE 1"), s.execErr
}
func (s stubPgx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}
func (s stubPgx) QueryRow(context.Context, string, ...any) pgx.Row {
	return scanFunc(func(...any) error { return s.rowErr })
}

type events []pg.QueryEvent

func (e *events) OnQuery(_ context.Context, ev pg.QueryEvent) { *e = append(*e, ev) }

func TestTracedReportsStatements(t *testing.T) {
	t.Parallel()
	var got events
	q := traced{q: stubPgx{rowErr: pgx.ErrNoRows}, tracer: &got, slowMs: 0}

	tag, err := q.Exec(context.Background(), "DELETE FROM access_requests WHERE id = $1", "x")
	if err != nil || tag.RowsAffected() != 1 {
		t.Fatalf("exec = %v %v", tag, err)
	}
	if err := q.QueryRow(context.Background(), "SELECT 1").Scan(); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("scan err = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("events = %d", len(got))
	}
	if len(got[0].Args) != 1 || !got[0].Slow {
		t.Fatalf("exec event = %+v", got[0])
	}
	if got[1].Err != nil {
		t.Fatalf("no rows should not be traced as a failure: %v", got[1].Err)
	}
}

func TestTracedWithoutTracer(t *testing.T) {
	t.Parallel()
	boom := errors.New("conn reset")
	q := traced{q: stubPgx{execErr: boom}, slowMs: -1}
	if _, err := q.Exec(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
