package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"memories-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondServiceError maps a service error to its HTTP status. Internal
// faults are logged and answered with a generic 500 so storage and
// provider details never leak.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError

	switch {
	case errors.As(err, &validationErr):
		respondError(w, validationErr.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFound):
		respondError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, models.ErrForbidden):
		// The published API answers ownership and visibility
		// violations with 401
		respondError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, models.ErrUnauthenticated),
		errors.Is(err, models.ErrExchangeFailed),
		errors.Is(err, models.ErrProfileFetchFailed),
		errors.Is(err, models.ErrInvalidProfile):
		respondError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, models.ErrFileTooLarge):
		respondError(w, "File too large", http.StatusBadRequest)
	case errors.Is(err, models.ErrUnsupportedType):
		respondError(w, "Unsupported file type", http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("Internal error")
		respondError(w, "Internal server error", http.StatusInternalServerError)
	}
}
