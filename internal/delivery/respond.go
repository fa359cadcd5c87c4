package delivery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vovarama1992/edushare/internal/domain"
	"github.com/Vovarama1992/go-utils/logger"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error   string              `json:"error"`
	Details []domain.FieldIssue `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError maps domain errors to statuses. Anything unrecognised is logged
// and answered with fallback, so internals never reach the client.
func writeError(w http.ResponseWriter, r *http.Request, log *logger.ZapLogger, err error, fallback string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Message, Details: verr.Issues})
	case errors.Is(err, domain.ErrCaptcha):
		writeMessage(w, http.StatusBadRequest, "reCAPTCHA verification failed")
	case errors.Is(err, domain.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "Unauthorized. Please log in.")
	case errors.Is(err, domain.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "You can only manage your own resources")
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, domain.ErrConflict):
		writeMessage(w, http.StatusConflict, "Resource is no longer pending")
	default:
		log.Log(logger.LogEntry{
			Level:   "error",
			Message: fallback,
			Fields: map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			},
			Error: err,
		})
		writeMessage(w, http.StatusInternalServerError, fallback)
	}
}

// decodeJSON reads a bounded body. A false return means a 400 was already written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}
	return true
}
