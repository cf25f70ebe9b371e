// Package repo provides the access request and enrollment repository
package repo

import (
	"context"
	"time"

	"enrollgate/internal/core/gate"
	"enrollgate/internal/modkit/repokit"
	"enrollgate/internal/platform/store"
	str "enrollgate/internal/platform/strings"
	"enrollgate/internal/services/api/access/domain"
)

// Repo is the persistence surface used by the service layer
// Every method runs on whatever Queryer it was bound to, pool or transaction
type Repo interface {
	LockPair(ctx context.Context, learnerID, unitID string) error

	LearnerExists(ctx context.Context, learnerID string) (bool, error)
	Unit(ctx context.Context, unitID string) (gate.Unit, error)
	HasEnrollment(ctx context.Context, learnerID, unitID string) (bool, error)
	HasPending(ctx context.Context, learnerID, unitID string) (bool, error)

	InsertRequest(ctx context.Context, r domain.Request) error
	Request(ctx context.Context, id string) (domain.Request, error)
	RequestForUpdate(ctx context.Context, id string) (domain.Request, error)
	DeleteRequest(ctx context.Context, id string) error
	Orphaned(ctx context.Context, learnerID, unitID string) (bool, error)

	UpsertEnrollment(ctx context.Context, learnerID, unitID string, kind gate.ContentKind) (domain.Enrollment, error)
	DeleteEnrollment(ctx context.Context, learnerID, unitID string) error

	ListPending(ctx context.Context, kind gate.ContentKind) ([]domain.PendingRow, error)
	ListByLearner(ctx context.Context, learnerID string) ([]domain.Request, error)
}

type (
	// PG is a Postgres implementation of the access repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// LockPair serialises writers on one (learner, unit) pair until the transaction ends
func (r *queries) LockPair(ctx context.Context, learnerID, unitID string) error {
	_, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`, learnerID, unitID)
	return err
}

// Unit loads the access descriptor; perr.ErrNotFound when the catalog no longer has it
func (r *queries) Unit(ctx context.Context, unitID string) (gate.Unit, error) {
	const sql = `
		SELECT id, kind, status, is_public, is_requestable, is_default_unlocked
		  FROM content_units
		 WHERE id = $1
	`
	return store.One(ctx, r.q, scanUnit, sql, unitID)
}

func scanUnit(row store.Row) (gate.Unit, error) {
	var u gate.Unit
	var kind, status string
	err := row.Scan(&u.ID, &kind, &status, &u.IsPublic, &u.IsRequestable, &u.IsDefaultUnlocked)
	u.Kind, u.Status = gate.ContentKind(kind), gate.Status(status)
	return u, err
}

// LearnerExists reports whether the identity mirror still has the learner
func (r *queries) LearnerExists(ctx context.Context, learnerID string) (bool, error) {
	return store.Scalar[bool](ctx, r.q, `SELECT EXISTS (SELECT 1 FROM learners WHERE id = $1)`, learnerID)
}

func (r *queries) HasEnrollment(ctx context.Context, learnerID, unitID string) (bool, error) {
	return store.Scalar[bool](ctx, r.q,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE learner_id = $1 AND content_unit_id = $2)`,
		learnerID, unitID)
}

func (r *queries) HasPending(ctx context.Context, learnerID, unitID string) (bool, error) {
	return store.Scalar[bool](ctx, r.q,
		`SELECT EXISTS (SELECT 1 FROM access_requests WHERE learner_id = $1 AND content_unit_id = $2)`,
		learnerID, unitID)
}

// InsertRequest stores a pending request; a second row for the pair fails on access_requests_pair_uq
func (r *queries) InsertRequest(ctx context.Context, req domain.Request) error {
	const sql = `
		INSERT INTO access_requests (id, learner_id, content_unit_id, content_kind, reason, requested_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)
	`
	_, err := r.q.Exec(ctx, sql,
		req.ID, req.LearnerID, req.ContentUnitID, string(req.ContentKind), str.SQLNull(req.Reason), req.RequestedAt)
	return err
}

const requestCols = `r.id::text, r.learner_id, r.content_unit_id, r.content_kind, COALESCE(r.reason, ''), r.requested_at`

func scanRequest(row store.Row) (domain.Request, error) {
	var req domain.Request
	var kind string
	err := row.Scan(&req.ID, &req.LearnerID, &req.ContentUnitID, &kind, &req.Reason, &req.RequestedAt)
	req.ContentKind = gate.ContentKind(kind)
	req.Status = domain.StatusPending
	req.RequestedAt = req.RequestedAt.UTC()
	return req, err
}

// RequestForUpdate row-locks the request; a concurrent resolver that committed first leaves nothing to find
func (r *queries) RequestForUpdate(ctx context.Context, id string) (domain.Request, error) {
	sql := `SELECT ` + requestCols + ` FROM access_requests r WHERE r.id = $1::uuid FOR UPDATE`
	return store.One(ctx, r.q, scanRequest, sql, id)
}

// DeleteRequest consumes the row; perr.ErrNotFound when it was already gone
func (r *queries) DeleteRequest(ctx context.Context, id string) error {
	return store.ExecOne(ctx, r.q, `DELETE FROM access_requests WHERE id = $1::uuid`, id)
}

// Orphaned reports whether the learner or the unit no longer exists
func (r *queries) Orphaned(ctx context.Context, learnerID, unitID string) (bool, error) {
	const sql = `
		SELECT NOT EXISTS (SELECT 1 FROM learners WHERE id = $1)
		    OR NOT EXISTS (SELECT 1 FROM content_units WHERE id = $2)
	`
	return store.Scalar[bool](ctx, r.q, sql, learnerID, unitID)
}

const enrollmentCols = `learner_id, content_unit_id, content_kind, progress, last_accessed, enrolled_at`

func scanEnrollment(row store.Row) (domain.Enrollment, error) {
	var e domain.Enrollment
	var kind string
	var last *time.Time
	err := row.Scan(&e.LearnerID, &e.ContentUnitID, &kind, &e.Progress, &last, &e.EnrolledAt)
	e.ContentKind = gate.ContentKind(kind)
	e.EnrolledAt = e.EnrolledAt.UTC()
	if last != nil {
		t := last.UTC()
		e.LastAccessed = &t
	}
	return e, err
}

// UpsertEnrollment creates the enrollment or returns the existing one untouched apart from kind
func (r *queries) UpsertEnrollment(ctx context.Context, learnerID, unitID string, kind gate.ContentKind) (domain.Enrollment, error) {
	sql := `
		INSERT INTO enrollments (learner_id, content_unit_id, content_kind, enrolled_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (learner_id, content_unit_id) DO UPDATE
		SET content_kind = EXCLUDED.content_kind
		RETURNING ` + enrollmentCols
	return store.One(ctx, r.q, scanEnrollment, sql, learnerID, unitID, string(kind))
}

// DeleteEnrollment removes the pair; perr.ErrNotFound when not enrolled
func (r *queries) DeleteEnrollment(ctx context.Context, learnerID, unitID string) error {
	return store.ExecOne(ctx, r.q,
		`DELETE FROM enrollments WHERE learner_id = $1 AND content_unit_id = $2`, learnerID, unitID)
}

// ListPending returns every pending request, oldest first, with existence and fault flags
// An empty kind lists both kinds
func (r *queries) ListPending(ctx context.Context, kind gate.ContentKind) ([]domain.PendingRow, error) {
	sql := `
		SELECT ` + requestCols + `,
		       l.id IS NOT NULL AS learner_exists,
		       u.id IS NOT NULL AS unit_exists,
		       e.learner_id IS NOT NULL AS integrity_fault
		  FROM access_requests r
		  LEFT JOIN learners l      ON l.id = r.learner_id
		  LEFT JOIN content_units u ON u.id = r.content_unit_id
		  LEFT JOIN enrollments e   ON e.learner_id = r.learner_id AND e.content_unit_id = r.content_unit_id
		 WHERE $1::text = '' OR r.content_kind = $1::text
		 ORDER BY r.requested_at, r.id
	`
	return store.Many(ctx, r.q, scanPending, sql, string(kind))
}

func scanPending(row store.Row) (domain.PendingRow, error) {
	var p domain.PendingRow
	var kind string
	err := row.Scan(&p.ID, &p.LearnerID, &p.ContentUnitID, &kind, &p.Reason, &p.RequestedAt,
		&p.LearnerExists, &p.UnitExists, &p.IntegrityFault)
	p.ContentKind = gate.ContentKind(kind)
	p.Status = domain.StatusPending
	p.RequestedAt = p.RequestedAt.UTC()
	p.Orphaned = !p.LearnerExists || !p.UnitExists
	return p, err
}

// ListByLearner returns the learner's pending requests, newest first
func (r *queries) ListByLearner(ctx context.Context, learnerID string) ([]domain.Request, error) {
	sql := `SELECT ` + requestCols + ` FROM access_requests r WHERE r.learner_id = $1 ORDER BY r.requested_at DESC, r.id`
	return store.Many(ctx, r.q, scanRequest, sql, learnerID)
}

// Request loads one pending request without locking it
func (r *queries) Request(ctx context.Context, id string) (domain.Request, error) {
	sql := `SELECT ` + requestCols + ` FROM access_requests r WHERE r.id = $1::uuid`
	return store.One(ctx, r.q, scanRequest, sql, id)
}
