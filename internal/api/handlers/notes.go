package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/simplygenda/backend/internal/api/middleware"
	"github.com/simplygenda/backend/internal/notes"
)

// GradeRequest is the body of POST /api/notes.
type GradeRequest struct {
	Subject string   `json:"subject"`
	Grade   *float64 `json:"grade"`
}

// NotesResponse is the grades table of a student.
type NotesResponse struct {
	Rows []notes.Row `json:"rows"`
}

// GetNotes returns the grades table of the authenticated student.
func GetNotes(svc *notes.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r.Context())
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Authentication required")
			return
		}

		rows, err := svc.Table(r.Context(), user)
		if err != nil {
			writeNotesError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, NotesResponse{Rows: rows})
	}
}

// AddNote records a grade and returns the refreshed table.
func AddNote(svc *notes.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r.Context())
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Authentication required")
			return
		}

		var req GradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Grade == nil {
			middleware.WriteErrorWithDetails(w, http.StatusUnprocessableEntity, middleware.ErrValidation,
				"La note doit être comprise entre 0 et 6.", map[string]string{"field": "grade"})
			return
		}

		if err := svc.AddGrade(r.Context(), user, strings.TrimSpace(req.Subject), *req.Grade); err != nil {
			writeNotesError(w, err)
			return
		}

		rows, err := svc.Table(r.Context(), user)
		if err != nil {
			writeNotesError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, NotesResponse{Rows: rows})
	}
}

func writeNotesError(w http.ResponseWriter, err error) {
	if errors.Is(err, notes.ErrNotStudent) {
		middleware.WriteError(w, http.StatusForbidden, middleware.ErrForbidden, "Les notes sont réservées aux étudiant·e·s.")
		return
	}
	middleware.WriteAppError(w, err)
}
