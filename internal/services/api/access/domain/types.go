// Package domain holds access request and enrollment types independent of transport or storage
package domain

import (
	"time"

	"enrollgate/internal/core/gate"
)

// StatusPending is the only status a stored request ever has; review consumes the row
const StatusPending = "pending"

// Request is a learner's pending ask for access to a gated unit
type Request struct {
	ID            string           `json:"id" example:"01928c7e-8c1a-7d2e-9f1b-3c5d7e9fa1b2"`
	LearnerID     string           `json:"learner_id" example:"learner-42"`
	ContentUnitID string           `json:"content_unit_id" example:"course-anatomy-101"`
	ContentKind   gate.ContentKind `json:"content_kind" example:"course"`
	Reason        string           `json:"reason,omitempty" example:"preparing for boards"`
	Status        string           `json:"status" example:"pending"`
	RequestedAt   time.Time        `json:"requested_at"`
}

// Enrollment grants a learner access to a unit
type Enrollment struct {
	LearnerID     string           `json:"learner_id" example:"learner-42"`
	ContentUnitID string           `json:"content_unit_id" example:"course-anatomy-101"`
	ContentKind   gate.ContentKind `json:"content_kind" example:"course"`
	Progress      float64          `json:"progress" example:"0"`
	LastAccessed  *time.Time       `json:"last_accessed,omitempty"`
	EnrolledAt    time.Time        `json:"enrolled_at"`
}

// Outcome is how a request was resolved
type Outcome string

const (
	// OutcomeApproved means the request became an enrollment
	OutcomeApproved Outcome = "approved"

	// OutcomeDenied means the request was dropped by review
	OutcomeDenied Outcome = "denied"

	// OutcomeOrphaned means the request was removed because its learner or unit is gone
	OutcomeOrphaned Outcome = "orphaned"
)

// Resolution is the result of approve, deny or delete
type Resolution struct {
	RequestID  string      `json:"request_id"`
	Outcome    Outcome     `json:"outcome" example:"approved"`
	Enrollment *Enrollment `json:"enrollment,omitempty"`
}

// PendingRow is a request as the admin listing sees it
// Orphaned and IntegrityFault are derived by join on every read
type PendingRow struct {
	Request
	LearnerExists  bool `json:"learner_exists"`
	UnitExists     bool `json:"unit_exists"`
	Orphaned       bool `json:"orphaned"`
	IntegrityFault bool `json:"integrity_fault"`
}

// Fault is a request observed alongside an enrollment for the same pair
type Fault struct {
	RequestID     string `json:"request_id"`
	LearnerID     string `json:"learner_id"`
	ContentUnitID string `json:"content_unit_id"`
}

// Listing is the admin view of pending requests
// Faults is never hidden by an empty Requests slice
type Listing struct {
	Requests []PendingRow `json:"requests"`
	Faults   []Fault      `json:"faults"`
}

// EventAction names what happened to a request or enrollment in the audit stream
type EventAction string

// Audit actions
const (
	ActionRequested    EventAction = "requested"
	ActionApproved     EventAction = "approved"
	ActionDenied       EventAction = "denied"
	ActionOrphaned     EventAction = "orphaned"
	ActionSelfEnrolled EventAction = "self_enrolled"
	ActionUnenrolled   EventAction = "unenrolled"
)

// ActionFor maps a resolution outcome onto its audit action
func ActionFor(o Outcome) EventAction {
	switch o {
	case OutcomeApproved:
		return ActionApproved
	case OutcomeDenied:
		return ActionDenied
	default:
		return ActionOrphaned
	}
}

// Event is one row of the access audit stream
type Event struct {
	At            time.Time
	Action        EventAction
	RequestID     string
	LearnerID     string
	ContentUnitID string
	ContentKind   gate.ContentKind
	Actor         string
	Reason        string
}
