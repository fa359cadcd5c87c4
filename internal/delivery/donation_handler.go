package delivery

import (
	"net/http"

	"github.com/Vovarama1992/edushare/internal/metrics"
	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/Vovarama1992/edushare/internal/ports"
	"github.com/Vovarama1992/go-utils/logger"
)

const donationScope = "donations"

type DonationHandler struct {
	svc     ports.DonationService
	limiter ports.RateLimiter
	log     *logger.ZapLogger
}

func NewDonationHandler(svc ports.DonationService, limiter ports.RateLimiter, log *logger.ZapLogger) *DonationHandler {
	return &DonationHandler{
		svc:     svc,
		limiter: limiter,
		log:     log,
	}
}

// POST /api/donation-request
//
// Only accepted submissions count against the limit, so the check and the
// hit are split around the service call.
func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	key := limitKey(donationScope, r)

	over, err := h.limiter.Exceeded(r.Context(), key)
	if err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "rate limiter failed",
			Fields:  map[string]any{"scope": donationScope},
			Error:   err,
		})
	} else if over {
		metrics.RateLimited.WithLabelValues(donationScope).Inc()
		writeMessage(w, http.StatusTooManyRequests, "Too many submissions. Please try again later.")
		return
	}

	var in models.DonationInput
	if !decodeJSON(w, r, &in) {
		return
	}

	if in.IsBot() {
		h.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "honeypot triggered",
			Fields:  map[string]any{"ip": ip, "route": donationScope},
		})
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Request submitted successfully!",
		})
		return
	}

	req, err := h.svc.Submit(r.Context(), in, ip)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to submit request")
		return
	}

	if err := h.limiter.Hit(r.Context(), key); err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "rate limiter hit failed",
			Fields:  map[string]any{"scope": donationScope},
			Error:   err,
		})
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "donation request submitted",
		Fields: map[string]any{
			"id":       req.ID,
			"category": req.Category,
			"district": req.District,
		},
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      req.ID,
		"message": "Request submitted successfully!",
	})
}

// GET /api/donation-requests?category=&district=
func (h *DonationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.List(r.Context(), models.DonationFilter{
		Category: q.Get("category"),
		District: q.Get("district"),
	})
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch donation requests")
		return
	}
	if items == nil {
		items = []models.DonationRequest{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items})
}
