package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/simplygenda/backend/internal/agenda"
	"github.com/simplygenda/backend/internal/api/middleware"
	"github.com/simplygenda/backend/internal/apperr"
	"github.com/simplygenda/backend/internal/editflow"
)

// EditResponse is the dialog state. Times are datetime-local values in the
// server's time zone.
type EditResponse struct {
	Open            bool          `json:"open"`
	Mode            editflow.Mode `json:"mode"`
	EventID         string        `json:"event_id,omitempty"`
	Title           string        `json:"title,omitempty"`
	Start           string        `json:"start,omitempty"`
	End             string        `json:"end,omitempty"`
	Color           string        `json:"color,omitempty"`
	ReminderMinutes int           `json:"reminder_minutes,omitempty"`
	CanDelete       bool          `json:"can_delete"`
}

// OpenEditRequest opens the dialog: an empty EventID creates a new event.
type OpenEditRequest struct {
	EventID string `json:"event_id"`
}

// SaveEditRequest is the submitted dialog.
type SaveEditRequest struct {
	Title           string `json:"title"`
	Start           string `json:"start"`
	End             string `json:"end"`
	Color           string `json:"color"`
	ReminderMinutes *int   `json:"reminder_minutes"`
}

func editResponse(form editflow.Form, open bool) EditResponse {
	if !open {
		return EditResponse{Mode: editflow.ModeClosed}
	}
	return EditResponse{
		Open:            true,
		Mode:            form.Mode,
		EventID:         form.EventID,
		Title:           form.Title,
		Start:           editflow.FormatLocal(form.Start),
		End:             editflow.FormatLocal(form.End),
		Color:           form.Color,
		ReminderMinutes: form.ReminderMinutes,
		CanDelete:       form.CanDelete,
	}
}

func (req SaveEditRequest) input() (editflow.Input, error) {
	start, err := editflow.ParseTime(req.Start)
	if err != nil {
		return editflow.Input{}, apperr.Invalid("start", "Date de début invalide.")
	}
	end, err := editflow.ParseTime(req.End)
	if err != nil {
		return editflow.Input{}, apperr.Invalid("end", "Date de fin invalide.")
	}
	in := editflow.Input{Title: req.Title, Start: start, End: end, Color: req.Color}
	if req.ReminderMinutes != nil {
		in.ReminderMinutes = *req.ReminderMinutes
	}
	return in, nil
}

// GetEdit returns the dialog state.
func GetEdit(registry *agenda.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := session(w, r, registry)
		if s == nil {
			return
		}
		form, open := s.EditForm()
		writeJSON(w, http.StatusOK, editResponse(form, open))
	}
}

// OpenEdit opens the dialog for creation or for a loaded event.
func OpenEdit(registry *agenda.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OpenEditRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
				return
			}
		}

		s, _ := session(w, r, registry)
		if s == nil {
			return
		}

		var form editflow.Form
		var err error
		if req.EventID == "" {
			form, err = s.OpenCreate()
		} else {
			form, err = s.OpenEdit(req.EventID)
		}
		if err != nil {
			writeFlowError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, editResponse(form, true))
	}
}

// SaveEdit validates and saves the dialog, then returns the fresh week. The
// dialog stays open on failure.
func SaveEdit(registry *agenda.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveEditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		s, _ := session(w, r, registry)
		if s == nil {
			return
		}

		in, err := req.input()
		if err != nil {
			middleware.WriteAppError(w, err)
			return
		}
		if req.ReminderMinutes == nil {
			if form, open := s.EditForm(); open {
				in.ReminderMinutes = form.ReminderMinutes
			}
		}

		view, err := s.Save(r.Context(), in)
		if err != nil {
			writeFlowError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// DeleteEdit soft-deletes the edited event and returns the fresh week.
func DeleteEdit(registry *agenda.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := session(w, r, registry)
		if s == nil {
			return
		}
		view, err := s.Delete(r.Context())
		if err != nil {
			writeFlowError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// CancelEdit closes the dialog without writing.
func CancelEdit(registry *agenda.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := session(w, r, registry)
		if s == nil {
			return
		}
		s.Cancel()
		writeJSON(w, http.StatusOK, editResponse(editflow.Form{}, false))
	}
}
