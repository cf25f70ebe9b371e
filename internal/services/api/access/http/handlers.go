// Package http provides http transport for access requests and enrollments
package http

import (
	stdhttp "net/http"

	"enrollgate/internal/core/gate"
	"enrollgate/internal/modkit/httpkit"
	perr "enrollgate/internal/platform/errors"
	"enrollgate/internal/platform/net/http/bind"
	"enrollgate/internal/platform/net/middleware"
	"enrollgate/internal/services/api/access/domain"
)

// Register mounts the learner and admin routes; every route requires a bearer token
func Register(r httpkit.Router, s domain.ServicePort, auth middleware.AuthPort) {
	domain.RegisterValidators()
	h := &handlers{svc: s}

	httpkit.Protected(r, auth, func(pr httpkit.Router) {
		httpkit.Learner(pr, func(lr httpkit.Router) {
			httpkit.PostJSON[domain.CreateInput](lr, "/requests", h.create)
			httpkit.PostJSON[domain.KindCreateInput](lr, "/{kind}/requests", h.createKind)
			httpkit.Get(lr, "/requests/mine", h.mine)
			httpkit.Get(lr, "/units/{unitId}", h.relation)
			httpkit.PostJSON[domain.EnrollInput](lr, "/enrollments", h.enroll)
		})

		httpkit.Admin(pr, func(ar httpkit.Router) {
			httpkit.Get(ar, "/admin/requests", h.listPending)
			httpkit.Get(ar, "/admin/{kind}/requests", h.listPendingKind)
			httpkit.Post(ar, "/admin/requests/{id}/approve", h.approve)
			httpkit.Post(ar, "/admin/requests/{id}/deny", h.deny)
			httpkit.Get(ar, "/admin/requests/{id}/orphaned", h.orphaned)
			httpkit.Delete(ar, "/admin/requests/{id}", h.deleteOrphaned)
			httpkit.DeleteJSON[domain.UnenrollInput](ar, "/admin/enrollments", h.unenroll)
		})
	})
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /access/requests Access create
// @Summary Request access to a course or question bank
// @Tags access
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body domain.CreateInput true "Request"
// @Success 200 {object} domain.Request "pending request"
// @Failure 400 {object} httpkit.Envelope "not requestable or invalid"
// @Failure 409 {object} httpkit.Envelope "already enrolled or duplicate request"
// @Router /access/requests [post]
func (h *handlers) create(r *stdhttp.Request, in domain.CreateInput) (any, error) {
	sub, err := httpkit.Subject(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Create(r.Context(), sub, in)
}

// @Summary Request access with the kind in the path
// @Tags access
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "courses or qbanks"
// @Param payload body domain.KindCreateInput true "Request"
// @Success 200 {object} domain.Request "pending request"
// @Router /access/{kind}/requests [post]
func (h *handlers) createKind(r *stdhttp.Request, in domain.KindCreateInput) (any, error) {
	kind, err := pathKind(r)
	if err != nil {
		return nil, err
	}
	return h.create(r, domain.CreateInput{ContentUnitID: in.ContentUnitID, ContentKind: kind, Reason: in.Reason})
}

// @Summary List my pending requests
// @Tags access
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Request
// @Router /access/requests/mine [get]
func (h *handlers) mine(r *stdhttp.Request) (any, error) {
	sub, err := httpkit.Subject(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Mine(r.Context(), sub)
}

// @Summary My relation to one unit
// @Tags access
// @Produce json
// @Security BearerAuth
// @Param unitId path string true "content unit id"
// @Success 200 {object} domain.UnitRelation
// @Failure 404 {object} httpkit.Envelope "unknown unit"
// @Router /access/units/{unitId} [get]
func (h *handlers) relation(r *stdhttp.Request) (any, error) {
	sub, err := httpkit.Subject(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Relation(r.Context(), sub, httpkit.Param(r, "unitId"))
}

// @Summary Enroll directly into a public unit
// @Tags access
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body domain.EnrollInput true "Enroll"
// @Success 200 {object} domain.Enrollment
// @Failure 400 {object} httpkit.Envelope "not open for direct enrollment"
// @Failure 409 {object} httpkit.Envelope "already enrolled or request pending"
// @Router /access/enrollments [post]
func (h *handlers) enroll(r *stdhttp.Request, in domain.EnrollInput) (any, error) {
	sub, err := httpkit.Subject(r)
	if err != nil {
		return nil, err
	}
	return h.svc.SelfEnroll(r.Context(), sub, in)
}

// @Summary List pending requests with orphan and integrity flags
// @Tags access-admin
// @Produce json
// @Security BearerAuth
// @Param kind query string false "course or qbank"
// @Success 200 {object} domain.Listing
// @Failure 403 {object} httpkit.Envelope "not an admin"
// @Router /access/admin/requests [get]
func (h *handlers) listPending(r *stdhttp.Request) (any, error) {
	kind := gate.ContentKind(r.URL.Query().Get("kind"))
	if kind != "" {
		k, err := gate.ParseKind(string(kind))
		if err != nil {
			return nil, perr.WithField(perr.Validationf("kind must be one of course, qbank"), "kind")
		}
		kind = k
	}
	return h.svc.ListPending(r.Context(), kind)
}

// @Summary List pending requests of one kind
// @Tags access-admin
// @Produce json
// @Security BearerAuth
// @Param kind path string true "courses or qbanks"
// @Success 200 {object} domain.Listing
// @Router /access/admin/{kind}/requests [get]
func (h *handlers) listPendingKind(r *stdhttp.Request) (any, error) {
	kind, err := pathKind(r)
	if err != nil {
		return nil, err
	}
	return h.svc.ListPending(r.Context(), kind)
}

// @Summary Approve a request
// @Tags access-admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "request id"
// @Success 200 {object} domain.Resolution
// @Failure 404 {object} httpkit.Envelope "already resolved"
// @Failure 409 {object} httpkit.Envelope "orphaned"
// @Failure 500 {object} httpkit.Envelope "integrity fault: pair already enrolled"
// @Router /access/admin/requests/{id}/approve [post]
func (h *handlers) approve(r *stdhttp.Request) (any, error) {
	return h.svc.Approve(r.Context(), httpkit.Param(r, "id"))
}

// @Summary Deny a request
// @Tags access-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "request id"
// @Param payload body domain.DenyInput false "Deny"
// @Success 200 {object} domain.Resolution
// @Failure 404 {object} httpkit.Envelope "already resolved"
// @Router /access/admin/requests/{id}/deny [post]
func (h *handlers) deny(r *stdhttp.Request) (any, error) {
	var in domain.DenyInput
	if r.ContentLength > 0 {
		var err error
		if in, err = bind.ParseJSON[domain.DenyInput](r); err != nil {
			return nil, err
		}
	}
	return h.svc.Deny(r.Context(), httpkit.Param(r, "id"), in)
}

// OrphanStatus answers whether a request's learner or unit is gone
type OrphanStatus struct {
	RequestID string `json:"request_id"`
	Orphaned  bool   `json:"orphaned"`
}

// @Summary Check whether a request is orphaned
// @Tags access-admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "request id"
// @Success 200 {object} OrphanStatus
// @Router /access/admin/requests/{id}/orphaned [get]
func (h *handlers) orphaned(r *stdhttp.Request) (any, error) {
	id := httpkit.Param(r, "id")
	o, err := h.svc.IsOrphaned(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return OrphanStatus{RequestID: id, Orphaned: o}, nil
}

// @Summary Delete an orphaned request
// @Tags access-admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "request id"
// @Success 200 {object} domain.Resolution
// @Failure 404 {object} httpkit.Envelope "already resolved"
// @Failure 409 {object} httpkit.Envelope "not orphaned"
// @Router /access/admin/requests/{id} [delete]
func (h *handlers) deleteOrphaned(r *stdhttp.Request) (any, error) {
	return h.svc.DeleteOrphaned(r.Context(), httpkit.Param(r, "id"))
}

// @Summary Remove an enrollment
// @Tags access-admin
// @Accept json
// @Security BearerAuth
// @Param payload body domain.UnenrollInput true "Unenroll"
// @Success 204
// @Failure 404 {object} httpkit.Envelope "not enrolled"
// @Router /access/admin/enrollments [delete]
func (h *handlers) unenroll(r *stdhttp.Request, in domain.UnenrollInput) (any, error) {
	if err := h.svc.Unenroll(r.Context(), in); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

func pathKind(r *stdhttp.Request) (gate.ContentKind, error) {
	k, err := gate.ParseKind(httpkit.Param(r, "kind"))
	if err != nil {
		return "", perr.NotFoundf("unknown content kind")
	}
	return k, nil
}
