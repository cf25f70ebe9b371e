// Package service contains the access request workflows
//
// The service is the only writer of access_requests and enrollments. Every mutation is one
// short transaction; resolution consumes the request row, so approve, deny and delete are
// mutually exclusive per request and the loser of a race sees NotFound.
package service

import (
	"context"
	"time"

	"enrollgate/internal/modkit/repokit"
	perr "enrollgate/internal/platform/errors"
	"enrollgate/internal/platform/logger"
	"enrollgate/internal/services/api/access/domain"
	"enrollgate/internal/services/api/access/repo"

	"github.com/google/uuid"
)

// Service is the public service port
type Service interface{ domain.ServicePort }

// Svc implements the service port
type Svc struct {
	db      repokit.TxRunner
	binder  repokit.Binder[repo.Repo]
	repo    repo.Repo
	events  EventSink
	metrics *Metrics
	now     func() time.Time
	newID   func() (uuid.UUID, error)
}

var _ Service = (*Svc)(nil)

// Options control service behavior
type Options struct {
	// Events receives audit events; nil discards them
	Events EventSink

	// Metrics is optional
	Metrics *Metrics

	// LockTimeout bounds waits on pair and row locks; zero keeps the server default
	LockTimeout time.Duration

	Now   func() time.Time
	NewID func() (uuid.UUID, error)
}

// New constructs the service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], opt Options) *Svc {
	if db == nil {
		panic("access.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("access.Service requires a non nil Repo binder")
	}
	if opt.Events == nil {
		opt.Events = nopSink{}
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if opt.NewID == nil {
		opt.NewID = uuid.NewV7
	}
	if opt.LockTimeout > 0 {
		db = repokit.WithBeginHooks(db, repokit.LockTimeout(opt.LockTimeout))
	}
	return &Svc{
		db:      db,
		binder:  binder,
		repo:    repokit.MustBind(binder, db),
		events:  opt.Events,
		metrics: opt.Metrics,
		now:     opt.Now,
		newID:   opt.NewID,
	}
}

func log(ctx context.Context) *logger.Logger {
	l := logger.C(ctx).With().Str("component", "access").Logger()
	return &l
}

// fail normalises an error leaving a workflow
// Missing rows, including lost races, are benign and logged at debug; our own typed errors pass through;
// anything else is a store failure, logged at error and mapped from its SQLSTATE
func (s *Svc) fail(ctx context.Context, op, missing string, err error) error {
	switch {
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		log(ctx).Debug().Str("op", op).Msg(missing)
		return perr.WithOp(perr.NotFoundf("%s", missing), op)
	case isOurs(err):
		log(ctx).Debug().Str("op", op).Err(err).Msg("access rejected")
		return perr.WithOp(err, op)
	}
	log(ctx).Error().Str("op", op).Err(err).Msg("access store failure")
	return perr.WithOp(perr.FromPostgres(err, op+" failed"), op)
}

func isOurs(err error) bool {
	_, ok := perr.As(err)
	return ok
}
