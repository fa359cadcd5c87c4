package delivery

import (
	"net/http"
	"strconv"

	"github.com/Vovarama1992/edushare/internal/domain"
	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/Vovarama1992/edushare/internal/ports"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
)

type ResourceHandler struct {
	svc ports.ResourceService
	log *logger.ZapLogger
}

func NewResourceHandler(svc ports.ResourceService, log *logger.ZapLogger) *ResourceHandler {
	return &ResourceHandler{
		svc: svc,
		log: log,
	}
}

type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// POST /api/resources
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ResourceInput
	if !decodeJSON(w, r, &in) {
		return
	}

	if in.IsBot() {
		h.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "honeypot triggered",
			Fields:  map[string]any{"ip": clientIP(r), "route": "resources"},
		})
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"id":      "fake-id",
		})
		return
	}

	user := UserFrom(r.Context())
	res, err := h.svc.Submit(r.Context(), user, in)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to submit resource")
		return
	}

	fields := map[string]any{
		"id":     res.ID,
		"type":   in.ResourceType,
		"status": res.Status,
	}
	if user != nil {
		fields["userID"] = user.ID
	}
	h.log.Log(logger.LogEntry{Level: "info", Message: "resource submitted", Fields: fields})

	msg := "Resource submitted for review."
	if res.Status == models.StatusApproved {
		msg = "Resource added successfully!"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      res.ID,
		"status":  res.Status,
		"message": msg,
	})
}

// parseFilter never fails: bad paging values fall back to defaults.
func parseFilter(r *http.Request) models.ResourceFilter {
	q := r.URL.Query()
	f := models.ResourceFilter{
		Type:     models.ResourceType(q.Get("type")),
		Level:    q.Get("level"),
		Stream:   q.Get("stream"),
		Subject:  q.Get("subject"),
		Language: q.Get("language"),
	}
	if f.Type != models.ResourceSession {
		f.Type = models.ResourceMaterial
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	return domain.NormalizeFilter(f)
}

// GET /api/resources
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	f := parseFilter(r)

	items, total, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch resources")
		return
	}
	if items == nil {
		items = []models.Resource{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": items,
		"pagination": pagination{
			Page:       f.Page,
			Limit:      f.Limit,
			Total:      total,
			TotalPages: (total + f.Limit - 1) / f.Limit,
		},
	})
}

func resourceType(r *http.Request) models.ResourceType {
	t := r.URL.Query().Get("type")
	if t == "" {
		return models.ResourceMaterial
	}
	return models.ResourceType(t)
}

// GET /api/resources/{id}?type=
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Get(r.Context(), UserFrom(r.Context()), resourceType(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch resource")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": item})
}

// DELETE /api/resources/{id}?type=
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	id := chi.URLParam(r, "id")
	t := resourceType(r)

	if err := h.svc.Delete(r.Context(), user, t, id); err != nil {
		writeError(w, r, h.log, err, "Failed to delete resource")
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "resource deleted",
		Fields: map[string]any{
			"id":     id,
			"type":   t,
			"userID": user.ID,
		},
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Resource deleted successfully",
	})
}

// GET /api/me/resources
func (h *ResourceHandler) Mine(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Mine(r.Context(), UserFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch resources")
		return
	}
	if items == nil {
		items = []models.Resource{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items})
}

// GET /api/me/stats
func (h *ResourceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), UserFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
