package handlers

import (
	"encoding/json"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/simplygenda/backend/internal/agenda"
	"github.com/simplygenda/backend/internal/api/middleware"
	"github.com/simplygenda/backend/internal/apperr"
	"github.com/simplygenda/backend/internal/calendar"
	"github.com/simplygenda/backend/internal/render"
	"github.com/simplygenda/backend/internal/storage/models"
)


// ImportRequest is the JSON form of POST /api/events/import.
type ImportRequest struct {
	URL string `json:"url"`
}

// ImportResponse reports the import and the refreshed week.
type ImportResponse struct {
	Result models.ImportResult `json:"result"`
	View   render.WeekView     `json:"view"`
}

// ListEvents reloads and returns the personal events of the user.
func ListEvents(registry *agenda.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := session(w, r, registry)
		if s == nil {
			return
		}
		if _, err := s.Reload(r.Context()); err != nil {
			middleware.WriteAppError(w, err)
			return
		}

		events := s.Events()
		if events == nil {
			events = []models.PersonalEvent{}
		}
		writeJSON(w, http.StatusOK, events)
	}
}

// ImportEvents creates personal events from an iCalendar document, posted
// as the body (text/calendar) or referenced by URL in a JSON body.
func ImportEvents(registry *agenda.Registry, parser *calendar.Parser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := session(w, r, registry)
		if s == nil {
			return
		}

		var events []models.CalendarEvent
		var err error

		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "application/json" {
			var req ImportRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
				return
			}
			url := strings.TrimSpace(req.URL)
			if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
				middleware.WriteAppError(w, apperr.Invalid("url", "URL de calendrier invalide."))
				return
			}
			events, err = parser.FetchAndParse(r.Context(), url)
			if err != nil {
				middleware.WriteAppError(w, apperr.Collaborator("fetching calendar", err))
				return
			}
		} else {
			events, err = parser.Parse(io.LimitReader(r.Body, calendar.MaxDocumentSize))
			if err != nil {
				log.Printf("Failed to parse imported calendar: %v", err)
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid iCalendar document")
				return
			}
		}

		result, view, err := s.Import(r.Context(), events)
		if err != nil {
			middleware.WriteAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ImportResponse{Result: result, View: view})
	}
}
