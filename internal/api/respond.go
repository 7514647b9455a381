package api

import (
	"errors"
	"net/http"
	"time"

	"customerbooking/internal/domain"
	"customerbooking/internal/models"
	"customerbooking/internal/service"

	"github.com/go-chi/render"
	"github.com/rs/zerolog"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Message   string            `json:"message"`
	Error     string            `json:"error"`
	Status    int               `json:"status"`
	Path      string            `json:"path"`
	Timestamp time.Time         `json:"timestamp"`
	Errors    map[string]string `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	render.Status(r, status)
	render.JSON(w, r, payload)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string, fields map[string]string) {
	respondJSON(w, r, status, ErrorResponse{
		Message:   message,
		Error:     http.StatusText(status),
		Status:    status,
		Path:      r.URL.Path,
		Timestamp: time.Now().UTC(),
		Errors:    fields,
	})
}

// respondServiceError maps domain errors to status codes; anything unknown is a 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error) {
	var invalidStatus *models.InvalidStatusError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, r, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrReferenced):
		respondError(w, r, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidRange):
		respondError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.As(err, &invalidStatus):
		respondError(w, r, http.StatusBadRequest, "validation failed", map[string]string{"status": invalidStatus.Error()})
	default:
		logger.Error().Err(err).Str("path", r.URL.Path).Str("method", r.Method).Msg("request failed")
		respondError(w, r, http.StatusInternalServerError, "internal server error", nil)
	}
}
