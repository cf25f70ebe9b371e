package service

import (
	"context"

	"enrollgate/internal/core/gate"
	perr "enrollgate/internal/platform/errors"
	"enrollgate/internal/services/api/access/domain"
)

// ListPending returns the admin listing with orphan and integrity flags
// Integrity faults are logged at error on every read and listed separately; they are never filtered out
func (s *Svc) ListPending(ctx context.Context, kind gate.ContentKind) (domain.Listing, error) {
	if kind != "" && !kind.Valid() {
		return domain.Listing{}, perr.WithField(perr.Validationf("kind must be one of course, qbank"), "kind")
	}
	rows, err := s.repo.ListPending(ctx, kind)
	if err != nil {
		return domain.Listing{}, s.fail(ctx, "list_pending", "no pending requests", err)
	}

	out := domain.Listing{Requests: make([]domain.PendingRow, 0, len(rows)), Faults: []domain.Fault{}}
	for _, row := range rows {
		out.Requests = append(out.Requests, row)
		if !row.IntegrityFault {
			continue
		}
		s.metrics.fault()
		log(ctx).Error().
			Str("request_id", row.ID).
			Str("learner_id", row.LearnerID).
			Str("content_unit_id", row.ContentUnitID).
			Msg("integrity fault: pending request coexists with enrollment")
		out.Faults = append(out.Faults, domain.Fault{
			RequestID:     row.ID,
			LearnerID:     row.LearnerID,
			ContentUnitID: row.ContentUnitID,
		})
	}
	return out, nil
}

// Mine lists the learner's own pending requests
func (s *Svc) Mine(ctx context.Context, learnerID string) ([]domain.Request, error) {
	rows, err := s.repo.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, s.fail(ctx, "mine", "no requests", err)
	}
	if rows == nil {
		rows = []domain.Request{}
	}
	return rows, nil
}

// Relation classifies the learner against one unit from the same facts a client would see
func (s *Svc) Relation(ctx context.Context, learnerID, unitID string) (domain.UnitRelation, error) {
	u, err := s.repo.Unit(ctx, unitID)
	if err != nil {
		return domain.UnitRelation{}, s.fail(ctx, "relation", "content unit not found", err)
	}
	enrolled, err := s.repo.HasEnrollment(ctx, learnerID, unitID)
	if err != nil {
		return domain.UnitRelation{}, s.fail(ctx, "relation", "content unit not found", err)
	}
	pending, err := s.repo.HasPending(ctx, learnerID, unitID)
	if err != nil {
		return domain.UnitRelation{}, s.fail(ctx, "relation", "content unit not found", err)
	}
	return domain.UnitRelation{
		ContentUnitID: u.ID,
		ContentKind:   u.Kind,
		Relation:      gate.Classify(gate.Learner{ID: learnerID, IsActive: true}, u, enrolled, pending),
	}, nil
}
