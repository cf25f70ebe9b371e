package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"enrollgate/internal/platform/store"
	"enrollgate/internal/platform/testkit"
)

type tag struct{}

func (tag) String() string      { return "SET" }
func (tag) RowsAffected() int64 { return 0 }

// recorder is a TxRunner that records every statement and hands itself to fn
type recorder struct {
	sql     []string
	execErr error
	txErr   error
}

func (r *recorder) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	r.sql = append(r.sql, sql)
	return tag{}, r.execErr
}
func (r *recorder) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (r *recorder) QueryRow(context.Context, string, ...any) store.Row      { return nil }
func (r *recorder) Tx(_ context.Context, fn func(Queryer) error) error {
	if r.txErr != nil {
		return r.txErr
	}
	return fn(r)
}

func TestLockTimeoutHook(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	tx := WithBeginHooks(rec, LockTimeout(2*time.Second), LockTimeout(0))

	ran := false
	err := tx.Tx(context.Background(), func(q Queryer) error {
		ran = true
		_, err := q.Exec(context.Background(), "SELECT 1")
		return err
	})
	if err != nil || !ran {
		t.Fatalf("err=%v ran=%v", err, ran)
	}
	want := []string{"SET LOCAL lock_timeout = '2000ms'", "SELECT 1"}
	if strings.Join(rec.sql, "|") != strings.Join(want, "|") {
		t.Fatalf("statements = %q, want %q", rec.sql, want)
	}
}

func TestHookErrorSkipsFn(t *testing.T) {
	t.Parallel()
	boom := errors.New("lock_timeout rejected")
	rec := &recorder{execErr: boom}
	tx := WithBeginHooks(rec, LockTimeout(time.Second))

	ran := false
	err := tx.Tx(context.Background(), func(Queryer) error { ran = true; return nil })
	if !errors.Is(err, boom) || ran {
		t.Fatalf("err=%v ran=%v", err, ran)
	}
}

func TestHookedTxPassesThrough(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	tx := WithBeginHooks(rec)
	if _, err := tx.Exec(context.Background(), "DELETE"); err != nil {
		t.Fatal(err)
	}
	if len(rec.sql) != 1 || rec.sql[0] != "DELETE" {
		t.Fatalf("pool exec not forwarded: %q", rec.sql)
	}
}

func TestMustBind(t *testing.T) {
	t.Parallel()
	b := BindFunc[string](func(q Queryer) string { return "bound" })
	if got := MustBind[string](b, &recorder{}); got != "bound" {
		t.Fatalf("got %q", got)
	}
	testkit.MustPanic(t, func() { MustBind[string](b, nil) })
}

type guardFunc func(context.Context) error

func (g guardFunc) Guard(ctx context.Context) error { return g(ctx) }

func TestMustGuard(t *testing.T) {
	t.Parallel()
	hadDeadline := false
	MustGuard(context.Background(), guardFunc(func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	}))
	if !hadDeadline {
		t.Fatalf("guard should run under a deadline")
	}
	testkit.MustPanic(t, func() {
		MustGuard(context.Background(), guardFunc(func(context.Context) error { return errors.New("pg down") }))
	})
}
