package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"discount-offers-layer/internal/domain"
)

// errorResponse is the JSON error shape returned by every handler.
type errorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors onto HTTP statuses: validation failures are
// 422 with field detail, missing documents are 404, everything else is 500.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Success: false,
			Error:   "validation failed",
			Fields:  validationErr.Fields,
		})
		return
	}

	var notFoundErr *domain.NotFoundError
	if errors.As(err, &notFoundErr) {
		message := "Offer not found"
		if notFoundErr.Resource == "shop" {
			message = "Shop not found"
		}
		writeJSON(w, http.StatusNotFound, errorResponse{
			Success: false,
			Error:   message,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Success: false,
		Error:   err.Error(),
	})
}
