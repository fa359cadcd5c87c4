package delivery

import (
	"github.com/Vovarama1992/edushare/internal/delivery/ws"
	"github.com/Vovarama1992/edushare/internal/ports"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
)

const resourceScope = "resources"

type Handlers struct {
	Auth      *AuthHandler
	Resources *ResourceHandler
	Admin     *AdminHandler
	Config    *ConfigHandler
	Donations *DonationHandler
}

func RegisterRoutes(
	r chi.Router,
	h Handlers,
	auth ports.AuthService,
	resourceLimiter ports.RateLimiter,
	hub *ws.Hub,
	log *logger.ZapLogger,
) {
	r.Route("/api", func(r chi.Router) {
		// websocket auth reads ?token=, so the feed sits outside OptionalAuth
		r.Get("/admin/feed", ws.FeedHandler(hub, auth, log))

		r.Group(func(r chi.Router) {
			r.Use(OptionalAuth(auth, log))

			// config
			r.Get("/config", h.Config.Get)

			// resources
			r.Get("/resources", h.Resources.List)
			r.With(RateLimit(resourceLimiter, resourceScope, log)).Post("/resources", h.Resources.Create)
			r.Get("/resources/{id}", h.Resources.Get)
			r.With(RequireAuth).Delete("/resources/{id}", h.Resources.Delete)

			// caller
			r.Group(func(r chi.Router) {
				r.Use(RequireAuth)
				r.Get("/me", h.Auth.Me)
				r.Get("/me/resources", h.Resources.Mine)
				r.Get("/me/stats", h.Resources.Stats)
			})

			// donations
			r.Post("/donation-request", h.Donations.Create)
			r.Get("/donation-requests", h.Donations.List)

			// moderation
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/admin/pending", h.Admin.Pending)
				r.Post("/admin/resources/{id}/approve", h.Admin.Approve)
				r.Post("/admin/resources/{id}/reject", h.Admin.Reject)
				r.Patch("/admin/donation-requests/{id}", h.Admin.UpdateDonation)
			})
		})
	})
}
