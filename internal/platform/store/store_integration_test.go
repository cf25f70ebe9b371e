//go:build integration_pg

package store

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	perr "enrollgate/internal/platform/errors"
	"enrollgate/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func openTestPG(t *testing.T) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s, err := Open(ctx, Config{
		AppName: "enrollgate-test",
		PG:      PGConfig{Enabled: true, URL: testkit.StartPostgres(t), MaxConns: 4, LogSQL: true, TxRetries: 2},
	}, WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestStoreIntegrationTxAndHelpers(t *testing.T) {
	s := openTestPG(t)
	ctx := context.Background()

	if err := s.Guard(ctx); err != nil {
		t.Fatalf("guard: %v", err)
	}
	if _, err := s.PG.Exec(ctx, `CREATE TABLE kv (k text PRIMARY KEY, v int NOT NULL)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	err := s.PG.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, `INSERT INTO kv VALUES ('a', 1)`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("tx error = %v", err)
	}
	n, err := Scalar[int](ctx, s.PG, `SELECT count(*) FROM kv`)
	if err != nil || n != 0 {
		t.Fatalf("rolled back insert visible: n=%d err=%v", n, err)
	}

	if err := s.PG.Tx(ctx, func(q RowQuerier) error {
		_, err := q.Exec(ctx, `INSERT INTO kv VALUES ('a', 1), ('b', 2)`)
		return err
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := ExecOne(ctx, s.PG, `UPDATE kv SET v = v + 1 WHERE k = $1`, "a"); err != nil {
		t.Fatalf("exec one: %v", err)
	}
	if err := ExecOne(ctx, s.PG, `DELETE FROM kv WHERE k = $1`, "zzz"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("exec one on missing row = %v", err)
	}
	if err := ExecOne(ctx, s.PG, `UPDATE kv SET v = 0`); err == nil {
		t.Fatalf("exec one touching two rows must fail")
	}

	scan := func(r Row) (int, error) {
		var v int
		err := r.Scan(&v)
		return v, err
	}
	if _, err := One(ctx, s.PG, scan, `SELECT v FROM kv WHERE k = 'nope'`); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("one on empty = %v", err)
	}
	vs, err := Many(ctx, s.PG, scan, `SELECT v FROM kv ORDER BY k`)
	if err != nil || len(vs) != 2 {
		t.Fatalf("many = %v %v", vs, err)
	}

	_, err = s.PG.Exec(ctx, `INSERT INTO kv VALUES ('b', 9)`)
	if !perr.IsDuplicateKey(err) || perr.ConstraintName(err) != "kv_pkey" {
		t.Fatalf("duplicate key not recognised: %v", err)
	}
}
