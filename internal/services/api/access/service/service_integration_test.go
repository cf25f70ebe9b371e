//go:build integration_pg

package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"enrollgate/internal/core/gate"
	"enrollgate/internal/modkit/repokit"
	perr "enrollgate/internal/platform/errors"
	"enrollgate/internal/platform/store"
	"enrollgate/internal/platform/testkit"
	"enrollgate/internal/services/api/access/domain"
	"enrollgate/internal/services/api/access/repo"

	"github.com/rs/zerolog"
)

func openPG(t *testing.T) repokit.TxRunner {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s, err := store.Open(ctx, store.Config{
		AppName: "enrollgate-test",
		PG:      store.PGConfig{Enabled: true, URL: testkit.StartPostgres(t), MaxConns: 16, TxRetries: 3},
	}, store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	if err := repo.Migrate(ctx, s.PG); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// idempotent
	if err := repo.Migrate(ctx, s.PG); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	seed := []string{
		`INSERT INTO learners (id) VALUES ('l1'), ('l2'), ('l3')`,
		`INSERT INTO content_units (id, kind, status, is_public, is_requestable, is_default_unlocked) VALUES
			('req',      'course', 'published', false, true,  false),
			('closed',   'course', 'published', false, false, false),
			('public',   'course', 'published', true,  false, false),
			('unlocked', 'qbank',  'published', false, true,  true),
			('qb',       'qbank',  'published', false, true,  false)`,
	}
	for _, q := range seed {
		if _, err := s.PG.Exec(ctx, q); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return s.PG
}

func count(t *testing.T, db repokit.TxRunner, sql string, args ...any) int {
	t.Helper()
	n, err := store.Scalar[int](context.Background(), db, sql, args...)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestAccessIntegration(t *testing.T) {
	db := openPG(t)
	svc := New(db, repo.NewPG(), Options{LockTimeout: 5 * time.Second})
	ctx := context.Background()

	t.Run("not requestable inserts nothing", func(t *testing.T) {
		_, err := svc.Create(ctx, "l1", domain.CreateInput{ContentUnitID: "closed", ContentKind: gate.KindCourse})
		wantCode(t, err, perr.ErrorCodeNotRequestable)
		if n := count(t, db, `SELECT count(*) FROM access_requests WHERE content_unit_id = 'closed'`); n != 0 {
			t.Fatalf("rows = %d", n)
		}
	})

	t.Run("concurrent creates leave one row", func(t *testing.T) {
		const n = 8
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = svc.Create(ctx, "l2", domain.CreateInput{ContentUnitID: "qb", ContentKind: gate.KindQBank})
			}()
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
			} else {
				wantCode(t, err, perr.ErrorCodeDuplicateRequest)
			}
		}
		if ok != 1 {
			t.Fatalf("successful creates = %d", ok)
		}
		if c := count(t, db, `SELECT count(*) FROM access_requests WHERE learner_id = 'l2' AND content_unit_id = 'qb'`); c != 1 {
			t.Fatalf("rows = %d", c)
		}
	})

	t.Run("approve races deny", func(t *testing.T) {
		req, err := svc.Create(ctx, "l1", domain.CreateInput{ContentUnitID: "req", ContentKind: gate.KindCourse})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		var wg sync.WaitGroup
		var aerr, derr error
		wg.Add(2)
		go func() { defer wg.Done(); _, aerr = svc.Approve(ctx, req.ID) }()
		go func() {
			defer wg.Done()
			time.Sleep(10 * time.Millisecond)
			_, derr = svc.Deny(ctx, req.ID, domain.DenyInput{})
		}()
		wg.Wait()

		if (aerr == nil) == (derr == nil) {
			t.Fatalf("want exactly one success: approve=%v deny=%v", aerr, derr)
		}
		for _, err := range []error{aerr, derr} {
			if err != nil {
				wantCode(t, err, perr.ErrorCodeNotFound)
			}
		}
		enrolled := count(t, db, `SELECT count(*) FROM enrollments WHERE learner_id = 'l1' AND content_unit_id = 'req'`)
		pending := count(t, db, `SELECT count(*) FROM access_requests WHERE id = $1::uuid`, req.ID)
		if pending != 0 || (enrolled == 1) != (aerr == nil) {
			t.Fatalf("pending=%d enrolled=%d approveErr=%v", pending, enrolled, aerr)
		}
	})

	t.Run("orphaned learner", func(t *testing.T) {
		req, err := svc.Create(ctx, "l3", domain.CreateInput{ContentUnitID: "req", ContentKind: gate.KindCourse})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := db.Exec(ctx, `DELETE FROM learners WHERE id = 'l3'`); err != nil {
			t.Fatalf("hard delete: %v", err)
		}

		if o, err := svc.IsOrphaned(ctx, req.ID); err != nil || !o {
			t.Fatalf("is orphaned = %v %v", o, err)
		}
		_, err = svc.Approve(ctx, req.ID)
		wantCode(t, err, perr.ErrorCodeOrphaned)

		listing, err := svc.ListPending(ctx, gate.KindCourse)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		found := false
		for _, row := range listing.Requests {
			if row.ID == req.ID {
				found = row.Orphaned && !row.LearnerExists && row.UnitExists
			}
		}
		if !found {
			t.Fatalf("orphan flags missing in %+v", listing.Requests)
		}

		if _, err := svc.DeleteOrphaned(ctx, req.ID); err != nil {
			t.Fatalf("delete orphaned: %v", err)
		}
		if n := count(t, db, `SELECT count(*) FROM enrollments WHERE learner_id = 'l3'`); n != 0 {
			t.Fatalf("orphan cleanup enrolled")
		}

		_, err = svc.Create(ctx, "l3", domain.CreateInput{ContentUnitID: "req", ContentKind: gate.KindCourse})
		wantCode(t, err, perr.ErrorCodeUnauthorized)
		if n := count(t, db, `SELECT count(*) FROM access_requests WHERE learner_id = 'l3'`); n != 0 {
			t.Fatalf("deleted learner could request again")
		}
	})

	t.Run("integrity fault is listed", func(t *testing.T) {
		req, err := svc.Create(ctx, "l1", domain.CreateInput{ContentUnitID: "qb", ContentKind: gate.KindQBank})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := db.Exec(ctx,
			`INSERT INTO enrollments (learner_id, content_unit_id, content_kind) VALUES ('l1', 'qb', 'qbank')`); err != nil {
			t.Fatalf("inject fault: %v", err)
		}

		listing, err := svc.ListPending(ctx, gate.KindQBank)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(listing.Faults) != 1 || listing.Faults[0].RequestID != req.ID {
			t.Fatalf("faults = %+v", listing.Faults)
		}

		_, err = svc.Approve(ctx, req.ID)
		wantCode(t, err, perr.ErrorCodeIntegrityFault)
		if n := count(t, db, `SELECT count(*) FROM access_requests WHERE learner_id = 'l1' AND content_unit_id = 'qb'`); n != 1 {
			t.Fatalf("faulted request consumed by approve")
		}
	})

	t.Run("self enroll and unenroll", func(t *testing.T) {
		if _, err := svc.SelfEnroll(ctx, "l2", domain.EnrollInput{ContentUnitID: "public", ContentKind: gate.KindCourse}); err != nil {
			t.Fatalf("self enroll: %v", err)
		}
		rel, err := svc.Relation(ctx, "l2", "public")
		if err != nil || rel.Relation != gate.Enrolled {
			t.Fatalf("relation = %v %v", rel.Relation, err)
		}
		if err := svc.Unenroll(ctx, domain.UnenrollInput{LearnerID: "l2", ContentUnitID: "public"}); err != nil {
			t.Fatalf("unenroll: %v", err)
		}
		wantCode(t, svc.Unenroll(ctx, domain.UnenrollInput{LearnerID: "l2", ContentUnitID: "public"}), perr.ErrorCodeNotFound)
	})

	t.Run("default unlocked", func(t *testing.T) {
		rel, err := svc.Relation(ctx, "l1", "unlocked")
		if err != nil || rel.Relation != gate.Enrolled {
			t.Fatalf("relation = %v %v", rel.Relation, err)
		}
	})
}
