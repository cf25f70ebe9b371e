package domain

import "enrollgate/internal/core/gate"

// CreateInput asks for access to a unit
type CreateInput struct {
	ContentUnitID string           `json:"content_unit_id" validate:"required,max=200" example:"course-anatomy-101"`
	ContentKind   gate.ContentKind `json:"content_kind" validate:"required,content_kind" example:"course"`
	Reason        string           `json:"reason,omitempty" validate:"max=4000" example:"preparing for boards"`
}

// KindCreateInput is CreateInput for routes that carry the kind in the path
type KindCreateInput struct {
	ContentUnitID string `json:"content_unit_id" validate:"required,max=200" example:"qbank-cardio"`
	Reason        string `json:"reason,omitempty" validate:"max=4000"`
}

// EnrollInput self-enrolls into a public unit
type EnrollInput struct {
	ContentUnitID string           `json:"content_unit_id" validate:"required,max=200" example:"course-intro"`
	ContentKind   gate.ContentKind `json:"content_kind" validate:"required,content_kind" example:"course"`
}

// DenyInput carries the reviewer's optional note
type DenyInput struct {
	Reason string `json:"reason,omitempty" validate:"max=4000" example:"not part of your cohort"`
}

// UnenrollInput removes an enrollment
type UnenrollInput struct {
	LearnerID     string `json:"learner_id" validate:"required,max=200" example:"learner-42"`
	ContentUnitID string `json:"content_unit_id" validate:"required,max=200" example:"course-anatomy-101"`
}

// UnitRelation is the learner's relation to one unit
type UnitRelation struct {
	ContentUnitID string           `json:"content_unit_id" example:"course-anatomy-101"`
	ContentKind   gate.ContentKind `json:"content_kind" example:"course"`
	Relation      gate.Relation    `json:"relation" swaggertype:"string" example:"available_request"`
}
