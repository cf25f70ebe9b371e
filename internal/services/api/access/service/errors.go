package service

import (
	"enrollgate/internal/core/gate"
	perr "enrollgate/internal/platform/errors"

	"github.com/google/uuid"
)

func noun(k gate.ContentKind) string {
	if k == gate.KindQBank {
		return "question bank"
	}
	return "course"
}

func errNotRequestable(k gate.ContentKind) error {
	return perr.Newf(perr.ErrorCodeNotRequestable, "this %s isn't open for requests", noun(k))
}

func errNotPublic(k gate.ContentKind) error {
	return perr.Newf(perr.ErrorCodeNotRequestable, "this %s isn't open for direct enrollment", noun(k))
}

func errAlreadyEnrolled(k gate.ContentKind) error {
	return perr.Newf(perr.ErrorCodeAlreadyEnrolled, "you already have access to this %s", noun(k))
}

func errDuplicateRequest(k gate.ContentKind) error {
	return perr.Newf(perr.ErrorCodeDuplicateRequest, "you already requested access to this %s", noun(k))
}

var (
	errOrphaned    = perr.New(perr.ErrorCodeOrphaned, "learner or content no longer exists; delete the request instead")
	errNotOrphaned = perr.New(perr.ErrorCodeNotOrphaned, "request still references a live learner and content unit")

	errIntegrityFault = perr.New(perr.ErrorCodeIntegrityFault,
		"learner is already enrolled while this request is pending; deny the request to clear it")

	// the token subject has no learner row; anything stored for it would be born orphaned
	errUnknownLearner = perr.Unauthorizedf("unknown learner")
)

// parseID rejects malformed ids before they reach the database
func parseID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", perr.WithField(perr.Validationf("invalid request id"), "id")
	}
	return u.String(), nil
}
