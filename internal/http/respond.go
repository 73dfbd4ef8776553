package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/bayramdkmn/ecommerce-api/internal/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps the service error kinds to HTTP status codes.
// Anything unrecognized is an internal error: transactional failures must
// never leak partial detail to the caller.
func handleServiceError(w http.ResponseWriter, err error) {
	var httpStatus int
	var code string

	switch {
	case errors.Is(err, service.ErrValidation):
		httpStatus = http.StatusBadRequest
		code = "invalid_request"
	case errors.Is(err, service.ErrNotFound):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, service.ErrPermission):
		httpStatus = http.StatusForbidden
		code = "permission_denied"
	case errors.Is(err, service.ErrStateConflict):
		httpStatus = http.StatusConflict
		code = "state_conflict"
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, httpStatus, code, err.Error())
}
