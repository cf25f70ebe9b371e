package domain

import (
	"context"

	"enrollgate/internal/core/gate"
)

// ServicePort is the interface implemented by the access service
type ServicePort interface {
	Create(ctx context.Context, learnerID string, in CreateInput) (Request, error)
	Approve(ctx context.Context, requestID string) (Resolution, error)
	Deny(ctx context.Context, requestID string, in DenyInput) (Resolution, error)
	DeleteOrphaned(ctx context.Context, requestID string) (Resolution, error)
	IsOrphaned(ctx context.Context, requestID string) (bool, error)

	ListPending(ctx context.Context, kind gate.ContentKind) (Listing, error)
	Mine(ctx context.Context, learnerID string) ([]Request, error)
	Relation(ctx context.Context, learnerID, unitID string) (UnitRelation, error)

	SelfEnroll(ctx context.Context, learnerID string, in EnrollInput) (Enrollment, error)
	Unenroll(ctx context.Context, in UnenrollInput) error
}
