// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/simplygenda/backend/internal/apperr"
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WriteError writes a JSON error response with the given status code.
func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// WriteErrorWithDetails writes a JSON error response with additional details.
func WriteErrorWithDetails(w http.ResponseWriter, status int, errCode, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
		Details: details,
	})
}

// WriteAppError maps a domain error to its response: validation failures are
// 422 with the offending field, collaborator failures 502, anything else 500.
func WriteAppError(w http.ResponseWriter, err error) {
	var verr *apperr.ValidationError
	var cerr *apperr.CollaboratorError
	switch {
	case errors.As(err, &verr):
		WriteErrorWithDetails(w, http.StatusUnprocessableEntity, ErrValidation, verr.Message, map[string]string{"field": verr.Field})
	case errors.As(err, &cerr):
		log.Printf("Collaborator failure: %v", cerr)
		WriteError(w, http.StatusBadGateway, ErrCollaborator, "Le service est momentanément indisponible.")
	default:
		log.Printf("Internal error: %v", err)
		WriteError(w, http.StatusInternalServerError, ErrInternalError, "An unexpected error occurred")
	}
}

// ErrorRecovery turns a panic into a 500 error body unless the handler has
// already started its response. http.ErrAbortHandler is passed through.
func ErrorRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := wrapWriter(w)
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}
			log.Printf("Panic recovered on %s %s: %v\n%s", r.Method, routeOf(r), err, debug.Stack())
			if !wrapped.wrote {
				WriteError(wrapped, http.StatusInternalServerError, ErrInternalError, "An unexpected error occurred")
			}
		}()
		next.ServeHTTP(wrapped, r)
	})
}

// Common error codes
const (
	ErrNotFound      = "not_found"
	ErrBadRequest    = "bad_request"
	ErrConflict      = "conflict"
	ErrInternalError = "internal_error"
	ErrValidation    = "validation_error"
	ErrUnauthorized  = "unauthorized"
	ErrCollaborator  = "collaborator_error"
	ErrForbidden     = "forbidden"
)
