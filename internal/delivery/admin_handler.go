package delivery

import (
	"context"
	"net/http"

	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/Vovarama1992/edushare/internal/ports"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	resources ports.ResourceService
	donations ports.DonationService
	log       *logger.ZapLogger
}

func NewAdminHandler(resources ports.ResourceService, donations ports.DonationService, log *logger.ZapLogger) *AdminHandler {
	return &AdminHandler{
		resources: resources,
		donations: donations,
		log:       log,
	}
}

// GET /api/admin/pending
func (h *AdminHandler) Pending(w http.ResponseWriter, r *http.Request) {
	items, err := h.resources.Pending(r.Context())
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch pending resources")
		return
	}
	if items == nil {
		items = []models.Resource{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items})
}

// POST /api/admin/resources/{id}/approve?type=
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.StatusApproved, h.resources.Approve)
}

// POST /api/admin/resources/{id}/reject?type=
func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.StatusRejected, h.resources.Reject)
}

func (h *AdminHandler) decide(
	w http.ResponseWriter,
	r *http.Request,
	to models.ApprovalStatus,
	apply func(ctx context.Context, admin *models.User, t models.ResourceType, id string) error,
) {
	admin := UserFrom(r.Context())
	id := chi.URLParam(r, "id")
	t := resourceType(r)

	if err := apply(r.Context(), admin, t, id); err != nil {
		writeError(w, r, h.log, err, "Failed to update resource")
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "resource moderated",
		Fields: map[string]any{
			"id":      id,
			"type":    t,
			"status":  to,
			"adminID": admin.ID,
		},
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  to,
	})
}

// PATCH /api/admin/donation-requests/{id}
func (h *AdminHandler) UpdateDonation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.DonationStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	admin := UserFrom(r.Context())
	id := chi.URLParam(r, "id")
	if err := h.donations.SetStatus(r.Context(), admin, id, req.Status); err != nil {
		writeError(w, r, h.log, err, "Failed to update donation request")
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "donation request updated",
		Fields: map[string]any{
			"id":      id,
			"status":  req.Status,
			"adminID": admin.ID,
		},
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  req.Status,
	})
}
