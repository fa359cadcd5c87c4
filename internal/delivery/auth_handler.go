package delivery

import (
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
)

type AuthHandler struct {
	log *logger.ZapLogger
}

func NewAuthHandler(log *logger.ZapLogger) *AuthHandler {
	return &AuthHandler{log: log}
}

// GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"user": UserFrom(r.Context()),
	})
}
