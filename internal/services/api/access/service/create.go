package service

import (
	"context"

	"enrollgate/internal/core/gate"
	"enrollgate/internal/core/reason"
	"enrollgate/internal/modkit/repokit"
	perr "enrollgate/internal/platform/errors"
	"enrollgate/internal/services/api/access/domain"
	"enrollgate/internal/services/api/access/repo"
)

// Create records a pending request after checking, under the pair lock, that the learner is not
// enrolled, has no pending request, and the unit accepts requests
func (s *Svc) Create(ctx context.Context, learnerID string, in domain.CreateInput) (domain.Request, error) {
	if learnerID == "" {
		return domain.Request{}, perr.Unauthorizedf("missing learner")
	}
	id, err := s.newID()
	if err != nil {
		return domain.Request{}, perr.Wrap(err, perr.ErrorCodeUnknown, "generate request id")
	}
	req := domain.Request{
		ID:            id.String(),
		LearnerID:     learnerID,
		ContentUnitID: in.ContentUnitID,
		ContentKind:   in.ContentKind,
		Reason:        reason.Clean(in.Reason),
		Status:        domain.StatusPending,
		RequestedAt:   s.now().UTC(),
	}

	err = s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		pc, err := s.classifyLocked(ctx, r, learnerID, in.ContentUnitID, in.ContentKind)
		if err != nil {
			return err
		}
		// enrollment and pending request win over the unit's flags and status
		switch {
		case pc.enrolled || pc.rel == gate.Enrolled:
			return errAlreadyEnrolled(pc.unit.Kind)
		case pc.pending:
			return errDuplicateRequest(pc.unit.Kind)
		case pc.unit.Status != gate.StatusPublished || !pc.unit.IsRequestable:
			return errNotRequestable(pc.unit.Kind)
		}
		if err := r.InsertRequest(ctx, req); err != nil {
			if perr.IsDuplicateKey(err) {
				return errDuplicateRequest(pc.unit.Kind)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Request{}, s.fail(ctx, "create", "content unit not found", err)
	}

	s.metrics.created(string(req.ContentKind))
	log(ctx).Info().
		Str("request_id", req.ID).
		Str("learner_id", learnerID).
		Str("content_unit_id", req.ContentUnitID).
		Str("kind", string(req.ContentKind)).
		Msg("access requested")
	s.events.Record(ctx, domain.Event{
		At:            req.RequestedAt,
		Action:        domain.ActionRequested,
		RequestID:     req.ID,
		LearnerID:     learnerID,
		ContentUnitID: req.ContentUnitID,
		ContentKind:   req.ContentKind,
		Actor:         learnerID,
		Reason:        req.Reason,
	})
	return req, nil
}

// SelfEnroll enrolls the learner directly into a public unit
func (s *Svc) SelfEnroll(ctx context.Context, learnerID string, in domain.EnrollInput) (domain.Enrollment, error) {
	if learnerID == "" {
		return domain.Enrollment{}, perr.Unauthorizedf("missing learner")
	}
	var enr domain.Enrollment
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		pc, err := s.classifyLocked(ctx, r, learnerID, in.ContentUnitID, in.ContentKind)
		if err != nil {
			return err
		}
		switch {
		case pc.enrolled || pc.rel == gate.Enrolled:
			return errAlreadyEnrolled(pc.unit.Kind)
		case pc.pending:
			return errDuplicateRequest(pc.unit.Kind)
		case pc.rel != gate.AvailableDirect:
			return errNotPublic(pc.unit.Kind)
		}
		enr, err = r.UpsertEnrollment(ctx, learnerID, pc.unit.ID, pc.unit.Kind)
		return err
	})
	if err != nil {
		return domain.Enrollment{}, s.fail(ctx, "self_enroll", "content unit not found", err)
	}

	s.metrics.enrollment(string(domain.ActionSelfEnrolled))
	log(ctx).Info().
		Str("learner_id", learnerID).
		Str("content_unit_id", enr.ContentUnitID).
		Msg("self enrolled")
	s.events.Record(ctx, domain.Event{
		At:            enr.EnrolledAt,
		Action:        domain.ActionSelfEnrolled,
		LearnerID:     learnerID,
		ContentUnitID: enr.ContentUnitID,
		ContentKind:   enr.ContentKind,
		Actor:         learnerID,
	})
	return enr, nil
}

// Unenroll removes an enrollment; NotFound when the pair is not enrolled
func (s *Svc) Unenroll(ctx context.Context, in domain.UnenrollInput) error {
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		if err := r.LockPair(ctx, in.LearnerID, in.ContentUnitID); err != nil {
			return err
		}
		return r.DeleteEnrollment(ctx, in.LearnerID, in.ContentUnitID)
	})
	if err != nil {
		return s.fail(ctx, "unenroll", "enrollment not found", err)
	}

	s.metrics.enrollment(string(domain.ActionUnenrolled))
	log(ctx).Info().
		Str("learner_id", in.LearnerID).
		Str("content_unit_id", in.ContentUnitID).
		Msg("unenrolled")
	s.events.Record(ctx, domain.Event{
		At:            s.now().UTC(),
		Action:        domain.ActionUnenrolled,
		LearnerID:     in.LearnerID,
		ContentUnitID: in.ContentUnitID,
		Actor:         actor(ctx),
	})
	return nil
}

// pairCheck is what classifyLocked saw for one (learner, unit) pair under the lock
type pairCheck struct {
	unit     gate.Unit
	enrolled bool
	pending  bool
	rel      gate.Relation
}

// classifyLocked takes the pair lock, checks the learner still exists, loads the unit and
// classifies the learner against it
// An unknown unit or a kind mismatch is a validation error on the input, not a missing resource
func (s *Svc) classifyLocked(
	ctx context.Context, r repo.Repo, learnerID, unitID string, kind gate.ContentKind,
) (pairCheck, error) {
	var pc pairCheck
	if err := r.LockPair(ctx, learnerID, unitID); err != nil {
		return pc, err
	}
	live, err := r.LearnerExists(ctx, learnerID)
	if err != nil {
		return pc, err
	}
	if !live {
		return pc, errUnknownLearner
	}
	u, err := r.Unit(ctx, unitID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return pc, perr.WithField(perr.Validationf("unknown content unit"), "content_unit_id")
		}
		return pc, err
	}
	if u.Kind != kind {
		return pc, perr.WithField(perr.Validationf("content unit is a %s", noun(u.Kind)), "content_kind")
	}
	pc.unit = u

	if pc.enrolled, err = r.HasEnrollment(ctx, learnerID, unitID); err != nil {
		return pc, err
	}
	if pc.pending, err = r.HasPending(ctx, learnerID, unitID); err != nil {
		return pc, err
	}
	pc.rel = gate.Classify(gate.Learner{ID: learnerID, IsActive: true}, u, pc.enrolled, pc.pending)
	return pc, nil
}
