package service

import (
	"context"

	"enrollgate/internal/core/reason"
	"enrollgate/internal/modkit/repokit"
	perr "enrollgate/internal/platform/errors"
	pnet "enrollgate/internal/platform/net"
	"enrollgate/internal/services/api/access/domain"
	"enrollgate/internal/services/api/access/repo"
)

const requestGone = "access request not found or already resolved"

// OrphanDetector decides whether a request's learner or unit has been hard deleted
// It asks the store every time; the answer is never cached
type OrphanDetector struct {
	Repo repo.Repo
}

// IsOrphaned reports whether req no longer resolves to a live learner and unit
func (d OrphanDetector) IsOrphaned(ctx context.Context, req domain.Request) (bool, error) {
	return d.Repo.Orphaned(ctx, req.LearnerID, req.ContentUnitID)
}

// IsOrphaned loads the request and runs the detector against it
func (s *Svc) IsOrphaned(ctx context.Context, requestID string) (bool, error) {
	id, err := parseID(requestID)
	if err != nil {
		return false, err
	}
	req, err := s.repo.Request(ctx, id)
	if err != nil {
		return false, s.fail(ctx, "is_orphaned", requestGone, err)
	}
	orphaned, err := OrphanDetector{Repo: s.repo}.IsOrphaned(ctx, req)
	if err != nil {
		return false, s.fail(ctx, "is_orphaned", requestGone, err)
	}
	return orphaned, nil
}

// Approve turns the request into an enrollment; both writes commit or neither does
// Orphaned requests are refused and must go through DeleteOrphaned
// A request whose pair is already enrolled is refused as an integrity fault and left in place
func (s *Svc) Approve(ctx context.Context, requestID string) (domain.Resolution, error) {
	var enr domain.Enrollment
	req, err := s.resolve(ctx, "approve", requestID, func(r repo.Repo, req domain.Request) error {
		if err := r.LockPair(ctx, req.LearnerID, req.ContentUnitID); err != nil {
			return err
		}
		orphaned, err := OrphanDetector{Repo: r}.IsOrphaned(ctx, req)
		if err != nil {
			return err
		}
		if orphaned {
			return errOrphaned
		}
		enrolled, err := r.HasEnrollment(ctx, req.LearnerID, req.ContentUnitID)
		if err != nil {
			return err
		}
		if enrolled {
			// a pending request beside an enrollment is reported, never merged
			s.metrics.fault()
			log(ctx).Error().
				Str("request_id", req.ID).
				Str("learner_id", req.LearnerID).
				Str("content_unit_id", req.ContentUnitID).
				Msg("integrity fault: approve found an existing enrollment")
			return errIntegrityFault
		}
		if enr, err = r.UpsertEnrollment(ctx, req.LearnerID, req.ContentUnitID, req.ContentKind); err != nil {
			return err
		}
		return r.DeleteRequest(ctx, req.ID)
	})
	if err != nil {
		return domain.Resolution{}, err
	}
	s.resolved(ctx, domain.OutcomeApproved, req, "")
	return domain.Resolution{RequestID: req.ID, Outcome: domain.OutcomeApproved, Enrollment: &enr}, nil
}

// Deny drops the request without enrolling
func (s *Svc) Deny(ctx context.Context, requestID string, in domain.DenyInput) (domain.Resolution, error) {
	req, err := s.resolve(ctx, "deny", requestID, func(r repo.Repo, req domain.Request) error {
		return r.DeleteRequest(ctx, req.ID)
	})
	if err != nil {
		return domain.Resolution{}, err
	}
	s.resolved(ctx, domain.OutcomeDenied, req, reason.Clean(in.Reason))
	return domain.Resolution{RequestID: req.ID, Outcome: domain.OutcomeDenied}, nil
}

// DeleteOrphaned removes a request whose learner or unit is gone
// A request that still resolves is refused so cleanup cannot stand in for a silent deny
func (s *Svc) DeleteOrphaned(ctx context.Context, requestID string) (domain.Resolution, error) {
	req, err := s.resolve(ctx, "delete_orphaned", requestID, func(r repo.Repo, req domain.Request) error {
		orphaned, err := OrphanDetector{Repo: r}.IsOrphaned(ctx, req)
		if err != nil {
			return err
		}
		if !orphaned {
			return errNotOrphaned
		}
		return r.DeleteRequest(ctx, req.ID)
	})
	if err != nil {
		return domain.Resolution{}, err
	}
	s.resolved(ctx, domain.OutcomeOrphaned, req, "")
	return domain.Resolution{RequestID: req.ID, Outcome: domain.OutcomeOrphaned}, nil
}

// resolve row-locks the request inside a transaction and hands it to fn
// A request resolved by a concurrent caller is gone by the time the lock is granted
func (s *Svc) resolve(
	ctx context.Context, op, requestID string, fn func(r repo.Repo, req domain.Request) error,
) (domain.Request, error) {
	id, err := parseID(requestID)
	if err != nil {
		return domain.Request{}, err
	}
	var req domain.Request
	err = s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		var err error
		if req, err = r.RequestForUpdate(ctx, id); err != nil {
			return err
		}
		return fn(r, req)
	})
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			s.metrics.alreadyResolved(op)
		}
		return domain.Request{}, s.fail(ctx, op, requestGone, err)
	}
	return req, nil
}

func (s *Svc) resolved(ctx context.Context, o domain.Outcome, req domain.Request, note string) {
	s.metrics.resolved(string(o), string(req.ContentKind))
	log(ctx).Info().
		Str("request_id", req.ID).
		Str("learner_id", req.LearnerID).
		Str("content_unit_id", req.ContentUnitID).
		Str("outcome", string(o)).
		Msg("access request resolved")
	s.events.Record(ctx, domain.Event{
		At:            s.now().UTC(),
		Action:        domain.ActionFor(o),
		RequestID:     req.ID,
		LearnerID:     req.LearnerID,
		ContentUnitID: req.ContentUnitID,
		ContentKind:   req.ContentKind,
		Actor:         actor(ctx),
		Reason:        note,
	})
}

func actor(ctx context.Context) string { return pnet.Subject(ctx) }
