// Package gate classifies a learner's relationship to a content unit
//
// Classify is pure: identical inputs always give the identical Relation, so clients can
// re-derive the affordance locally from the same facts the server used.
package gate

import (
	"encoding/json"
	"fmt"
)

// ContentKind is the kind of gated content
type ContentKind string

// Content kinds
const (
	KindCourse ContentKind = "course"
	KindQBank  ContentKind = "qbank"
)

// Kinds lists every ContentKind
var Kinds = []ContentKind{KindCourse, KindQBank}

// Valid reports whether k is a known kind
func (k ContentKind) Valid() bool { return k == KindCourse || k == KindQBank }

// ParseKind accepts a kind name or its plural route segment (courses, qbanks)
func ParseKind(s string) (ContentKind, error) {
	switch s {
	case "course", "courses":
		return KindCourse, nil
	case "qbank", "qbanks":
		return KindQBank, nil
	}
	return "", fmt.Errorf("unknown content kind %q", s)
}

// Status is a unit's publication status
type Status string

// Publication statuses
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Unit is the read-only access descriptor of a content unit, supplied by the catalog
type Unit struct {
	ID                string      `json:"id"`
	Kind              ContentKind `json:"kind"`
	Status            Status      `json:"status"`
	IsPublic          bool        `json:"is_public"`
	IsRequestable     bool        `json:"is_requestable"`
	IsDefaultUnlocked bool        `json:"is_default_unlocked"`
}

// Learner is the identity side of a classification
type Learner struct {
	ID       string `json:"id"`
	IsActive bool   `json:"is_active"`
}

// Relation is the learner's current relationship to a unit
type Relation uint8

// Relations, in no particular order
const (
	Locked Relation = iota
	Enrolled
	Requested
	AvailableDirect
	AvailableRequest
)

// Relations lists every Relation
var Relations = []Relation{Locked, Enrolled, Requested, AvailableDirect, AvailableRequest}

var relationNames = [...]string{
	Locked:           "locked",
	Enrolled:         "enrolled",
	Requested:        "requested",
	AvailableDirect:  "available_direct",
	AvailableRequest: "available_request",
}

// String returns the wire name
func (r Relation) String() string {
	if int(r) < len(relationNames) {
		return relationNames[r]
	}
	return fmt.Sprintf("relation(%d)", uint8(r))
}

// MarshalJSON encodes the wire name
func (r Relation) MarshalJSON() ([]byte, error) { return json.Marshal(r.String()) }

// UnmarshalJSON decodes a wire name
func (r *Relation) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for i, n := range relationNames {
		if n == s {
			*r = Relation(i)
			return nil
		}
	}
	return fmt.Errorf("unknown relation %q", s)
}

// Classify decides the relation, first match wins:
// unpublished is locked, default-unlocked is enrolled, then enrollment, pending request,
// public (self-enroll), requestable, and locked otherwise
//
// The learner is accepted for signature parity with callers; no rule consults it.
func Classify(_ Learner, u Unit, hasEnrollment, hasPendingRequest bool) Relation {
	switch {
	case u.Status != StatusPublished:
		return Locked
	case u.IsDefaultUnlocked:
		return Enrolled
	case hasEnrollment:
		return Enrolled
	case hasPendingRequest:
		return Requested
	case u.IsPublic:
		return AvailableDirect
	case u.IsRequestable:
		return AvailableRequest
	default:
		return Locked
	}
}
