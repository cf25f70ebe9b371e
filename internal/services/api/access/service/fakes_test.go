package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"enrollgate/internal/core/gate"
	"enrollgate/internal/modkit/repokit"
	perr "enrollgate/internal/platform/errors"
	"enrollgate/internal/services/api/access/domain"
	"enrollgate/internal/services/api/access/repo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type pair struct{ learner, unit string }

// memDB is an in-memory store; Tx serialises transactions and rolls back on error
type memDB struct {
	mu          sync.Mutex
	learners    map[string]bool
	units       map[string]gate.Unit
	requests    map[string]domain.Request
	enrollments map[pair]domain.Enrollment

	// raceInsert makes InsertRequest fail as if a concurrent create won the unique index
	raceInsert bool
	// unitErr fails every Unit lookup
	unitErr error
}

func newMemDB() *memDB {
	return &memDB{
		learners:    map[string]bool{},
		units:       map[string]gate.Unit{},
		requests:    map[string]domain.Request{},
		enrollments: map[pair]domain.Enrollment{},
	}
}

type stubQ struct{}

type tag struct{}

func (tag) String() string      { return "" }
func (tag) RowsAffected() int64 { return 0 }

func (stubQ) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return tag{}, nil }
func (stubQ) Query(context.Context, string, ...any) (repokit.Rows, error) {
	return nil, errors.New("not supported")
}
func (stubQ) QueryRow(context.Context, string, ...any) repokit.Row { return nil }

type txQ struct{ stubQ }

type poolQ struct {
	stubQ
	m *memDB
}

func (m *memDB) pool() repokit.TxRunner { return poolQ{m: m} }

func (p poolQ) Tx(_ context.Context, fn func(q repokit.Queryer) error) error {
	m := p.m
	m.mu.Lock()
	defer m.mu.Unlock()

	learners := clone(m.learners)
	units := clone(m.units)
	requests := clone(m.requests)
	enrollments := clone(m.enrollments)
	if err := fn(txQ{}); err != nil {
		m.learners, m.units, m.requests, m.enrollments = learners, units, requests, enrollments
		return err
	}
	return nil
}

func clone[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *memDB) binder() repokit.Binder[repo.Repo] {
	return repokit.BindFunc[repo.Repo](func(q repokit.Queryer) repo.Repo {
		_, inTx := q.(txQ)
		return &memRepo{m: m, inTx: inTx}
	})
}

type memRepo struct {
	m    *memDB
	inTx bool
}

func (r *memRepo) do(fn func(m *memDB)) {
	if !r.inTx {
		r.m.mu.Lock()
		defer r.m.mu.Unlock()
	}
	fn(r.m)
}

func (r *memRepo) LockPair(context.Context, string, string) error { return nil }

func (r *memRepo) Unit(_ context.Context, id string) (u gate.Unit, err error) {
	r.do(func(m *memDB) {
		if m.unitErr != nil {
			err = m.unitErr
			return
		}
		var ok bool
		if u, ok = m.units[id]; !ok {
			err = perr.ErrNotFound
		}
	})
	return u, err
}

func (r *memRepo) LearnerExists(_ context.Context, l string) (ok bool, _ error) {
	r.do(func(m *memDB) { ok = m.learners[l] })
	return ok, nil
}

func (r *memRepo) HasEnrollment(_ context.Context, l, u string) (ok bool, _ error) {
	r.do(func(m *memDB) { _, ok = m.enrollments[pair{l, u}] })
	return ok, nil
}

func (r *memRepo) HasPending(_ context.Context, l, u string) (ok bool, _ error) {
	r.do(func(m *memDB) {
		for _, req := range m.requests {
			if req.LearnerID == l && req.ContentUnitID == u {
				ok = true
			}
		}
	})
	return ok, nil
}

func (r *memRepo) InsertRequest(_ context.Context, req domain.Request) (err error) {
	r.do(func(m *memDB) {
		if m.raceInsert {
			err = &pgconn.PgError{Code: "23505", ConstraintName: "access_requests_pair_uq"}
			return
		}
		m.requests[req.ID] = req
	})
	return err
}

func (r *memRepo) Request(_ context.Context, id string) (req domain.Request, err error) {
	r.do(func(m *memDB) {
		var ok bool
		if req, ok = m.requests[id]; !ok {
			err = perr.ErrNotFound
		}
	})
	return req, err
}

func (r *memRepo) RequestForUpdate(ctx context.Context, id string) (domain.Request, error) {
	return r.Request(ctx, id)
}

func (r *memRepo) DeleteRequest(_ context.Context, id string) (err error) {
	r.do(func(m *memDB) {
		if _, ok := m.requests[id]; !ok {
			err = perr.ErrNotFound
			return
		}
		delete(m.requests, id)
	})
	return err
}

func (r *memRepo) Orphaned(_ context.Context, l, u string) (orphaned bool, _ error) {
	r.do(func(m *memDB) {
		_, unit := m.units[u]
		orphaned = !m.learners[l] || !unit
	})
	return orphaned, nil
}

func (r *memRepo) UpsertEnrollment(_ context.Context, l, u string, kind gate.ContentKind) (e domain.Enrollment, _ error) {
	r.do(func(m *memDB) {
		k := pair{l, u}
		var ok bool
		if e, ok = m.enrollments[k]; !ok {
			e = domain.Enrollment{LearnerID: l, ContentUnitID: u, EnrolledAt: time.Unix(1700000000, 0).UTC()}
		}
		e.ContentKind = kind
		m.enrollments[k] = e
	})
	return e, nil
}

func (r *memRepo) DeleteEnrollment(_ context.Context, l, u string) (err error) {
	r.do(func(m *memDB) {
		if _, ok := m.enrollments[pair{l, u}]; !ok {
			err = perr.ErrNotFound
			return
		}
		delete(m.enrollments, pair{l, u})
	})
	return err
}

func (r *memRepo) ListPending(_ context.Context, kind gate.ContentKind) (out []domain.PendingRow, _ error) {
	r.do(func(m *memDB) {
		for _, req := range m.requests {
			if kind != "" && req.ContentKind != kind {
				continue
			}
			_, unit := m.units[req.ContentUnitID]
			_, enrolled := m.enrollments[pair{req.LearnerID, req.ContentUnitID}]
			out = append(out, domain.PendingRow{
				Request:        req,
				LearnerExists:  m.learners[req.LearnerID],
				UnitExists:     unit,
				Orphaned:       !m.learners[req.LearnerID] || !unit,
				IntegrityFault: enrolled,
			})
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (r *memRepo) ListByLearner(_ context.Context, l string) (out []domain.Request, _ error) {
	r.do(func(m *memDB) {
		for _, req := range m.requests {
			if req.LearnerID == l {
				out = append(out, req)
			}
		}
	})
	return out, nil
}

// recordingSink collects events
type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Record(_ context.Context, ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) actions() []domain.EventAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.EventAction, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Action)
	}
	return out
}

// fixture seeds one learner and a handful of units
type fixture struct {
	db   *memDB
	svc  *Svc
	sink *recordingSink
	seq  int
}

func newFixture() *fixture {
	db := newMemDB()
	db.learners["l1"] = true
	db.learners["l2"] = true
	db.units["req"] = gate.Unit{ID: "req", Kind: gate.KindCourse, Status: gate.StatusPublished, IsRequestable: true}
	db.units["closed"] = gate.Unit{ID: "closed", Kind: gate.KindCourse, Status: gate.StatusPublished}
	db.units["public"] = gate.Unit{ID: "public", Kind: gate.KindCourse, Status: gate.StatusPublished, IsPublic: true}
	db.units["draft"] = gate.Unit{ID: "draft", Kind: gate.KindCourse, Status: gate.StatusDraft, IsRequestable: true}
	db.units["unlocked"] = gate.Unit{ID: "unlocked", Kind: gate.KindQBank, Status: gate.StatusPublished, IsDefaultUnlocked: true, IsRequestable: true}
	db.units["qb"] = gate.Unit{ID: "qb", Kind: gate.KindQBank, Status: gate.StatusPublished, IsRequestable: true}

	f := &fixture{db: db, sink: &recordingSink{}}
	f.svc = New(db.pool(), db.binder(), Options{
		Events: f.sink,
		Now:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		NewID: func() (uuid.UUID, error) {
			f.seq++
			return uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(f.seq)}), nil
		},
	})
	return f
}

func (f *fixture) mustCreate(t *testing.T, learner, unit string, kind gate.ContentKind) domain.Request {
	t.Helper()
	req, err := f.svc.Create(context.Background(), learner, domain.CreateInput{ContentUnitID: unit, ContentKind: kind})
	if err != nil {
		t.Fatalf("create %s/%s: %v", learner, unit, err)
	}
	return req
}

func (f *fixture) pendingCount() int {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return len(f.db.requests)
}

func (f *fixture) enrolled(learner, unit string) bool {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	_, ok := f.db.enrollments[pair{learner, unit}]
	return ok
}
