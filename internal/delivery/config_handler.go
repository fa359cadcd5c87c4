package delivery

import (
	"net/http"

	"github.com/Vovarama1992/edushare/internal/ports"
	"github.com/Vovarama1992/go-utils/logger"
)

type ConfigHandler struct {
	svc ports.ConfigService
	log *logger.ZapLogger
}

func NewConfigHandler(svc ports.ConfigService, log *logger.ZapLogger) *ConfigHandler {
	return &ConfigHandler{svc: svc, log: log}
}

// GET /api/config
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Build(r.Context())
	if err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "config build failed",
			Error:   err,
		})
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch configuration")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
