// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/simplygenda/backend/internal/agenda"
	"github.com/simplygenda/backend/internal/api/middleware"
	"github.com/simplygenda/backend/internal/editflow"
	"github.com/simplygenda/backend/internal/storage/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeFlowError maps edit flow and session errors, falling back to the
// domain error mapping.
func writeFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editflow.ErrAlreadyOpen),
		errors.Is(err, editflow.ErrNotOpen),
		errors.Is(err, editflow.ErrNotEditing):
		middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, err.Error())
	case errors.Is(err, agenda.ErrEventNotFound):
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
	default:
		middleware.WriteAppError(w, err)
	}
}

// session returns the calendar session of the authenticated user, creating
// one after a restart. It writes the error response itself and returns nil
// on failure.
func session(w http.ResponseWriter, r *http.Request, registry *agenda.Registry) (*agenda.Session, *models.User) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Authentication required")
		return nil, nil
	}
	s, err := registry.Ensure(r.Context(), *user)
	if err != nil {
		log.Printf("Failed to initialize calendar for %s: %v", user.ID, err)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to initialize calendar")
		return nil, nil
	}
	return s, user
}
