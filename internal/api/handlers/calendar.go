package handlers

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"github.com/simplygenda/backend/internal/agenda"
	"github.com/simplygenda/backend/internal/api/middleware"
	"github.com/simplygenda/backend/internal/render"
)

// ZoomRequest is the body of POST /api/calendar/zoom. Direction "in" or
// "out" steps the zoom; otherwise Zoom is applied, clamped.
type ZoomRequest struct {
	Direction string `json:"direction"`
	Zoom      *int   `json:"zoom"`
}

// GetCalendar renders the current state without changing it.
func GetCalendar(registry *agenda.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := session(w, r, registry)
		if s == nil {
			return
		}
		view, err := s.Render()
		if err != nil {
			middleware.WriteAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// NavigateCalendar moves the displayed week by delta weeks.
func NavigateCalendar(registry *agenda.Registry, delta int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := session(w, r, registry)
		if s == nil {
			return
		}
		view, err := s.Navigate(delta)
		if err != nil {
			middleware.WriteAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// TodayCalendar shows the current week.
func TodayCalendar(registry *agenda.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := session(w, r, registry)
		if s == nil {
			return
		}
		view, err := s.Today()
		if err != nil {
			middleware.WriteAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// ZoomCalendar changes the pixels-per-hour of the grid.
func ZoomCalendar(registry *agenda.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ZoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		s, _ := session(w, r, registry)
		if s == nil {
			return
		}

		var view render.WeekView
		var err error
		switch {
		case req.Direction == "in":
			view, err = s.ZoomIn()
		case req.Direction == "out":
			view, err = s.ZoomOut()
		case req.Zoom != nil:
			view, err = s.SetZoom(*req.Zoom)
		default:
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, `Expected direction "in"/"out" or a zoom value`)
			return
		}
		if err != nil {
			middleware.WriteAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// CalendarPage serves the server-rendered week as HTML.
func CalendarPage(registry *agenda.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := session(w, r, registry)
		if s == nil {
			return
		}
		view, err := s.Render()
		if err != nil {
			middleware.WriteAppError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := render.WriteHTML(w, view); err != nil {
			log.Printf("Failed to write calendar page: %v", err)
		}
	}
}

// ExportCalendar writes the displayed week as an iCalendar file.
func ExportCalendar(registry *agenda.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := session(w, r, registry)
		if s == nil {
			return
		}
		var buf bytes.Buffer
		if err := s.ExportICS(&buf); err != nil {
			log.Printf("Failed to export calendar: %v", err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to export calendar")
			return
		}
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="semaine.ics"`)
		w.Write(buf.Bytes())
	}
}
