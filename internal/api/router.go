// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	gorillaws "github.com/gorilla/websocket"

	"github.com/simplygenda/backend/internal/agenda"
	"github.com/simplygenda/backend/internal/api/handlers"
	"github.com/simplygenda/backend/internal/api/middleware"
	"github.com/simplygenda/backend/internal/calendar"
	"github.com/simplygenda/backend/internal/metrics"
	"github.com/simplygenda/backend/internal/notes"
	"github.com/simplygenda/backend/internal/storage"
	"github.com/simplygenda/backend/internal/websocket"
)

// AvatarPrefix is the public URL prefix of uploaded avatars.
const AvatarPrefix = "/avatars/"

// Services are the collaborators the routes are wired to.
type Services struct {
	DB        *storage.DB
	Hub       *websocket.Hub
	Registry  *agenda.Registry
	Scheduler *agenda.Scheduler
	Users     *storage.UserRepository
	Sessions  *storage.SessionRepository
	Notes     *notes.Service
	Avatars   *storage.AvatarStore
	Parser    *calendar.Parser
	Metrics   *metrics.Metrics

	StaticDir   string
	CORSOrigins []string
	SessionTTL  time.Duration
	Version     string
}

// NewRouter creates the HTTP handler with all API routes.
func NewRouter(s Services) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)
	r.Use(middleware.Metrics(s.Metrics))

	auth := middleware.Auth(s.Sessions)
	protect := func(h http.HandlerFunc) http.Handler { return auth(h) }

	authDeps := handlers.AuthDeps{
		Users:      s.Users,
		Sessions:   s.Sessions,
		Registry:   s.Registry,
		SessionTTL: s.SessionTTL,
	}
	profileDeps := handlers.ProfileDeps{
		Users:    s.Users,
		Avatars:  s.Avatars,
		Registry: s.Registry,
	}

	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(s.DB)).Methods("GET")
	api.Handle("/status", protect(handlers.Status(s.DB, s.Hub, s.Registry, s.Scheduler, s.Version))).Methods("GET")

	// Auth endpoints
	api.HandleFunc("/auth/signup", handlers.Signup(authDeps)).Methods("POST")
	api.HandleFunc("/auth/login", handlers.Login(authDeps)).Methods("POST")
	api.Handle("/auth/logout", protect(handlers.Logout(authDeps))).Methods("POST")
	api.Handle("/me", protect(handlers.Me())).Methods("GET")

	// WebSocket endpoint
	api.Handle("/ws", protect(handlers.WebSocketUpgrade(s.Hub))).Methods("GET")

	// Calendar endpoints
	api.Handle("/calendar", protect(handlers.GetCalendar(s.Registry))).Methods("GET")
	api.Handle("/calendar/prev", protect(handlers.NavigateCalendar(s.Registry, -1))).Methods("POST")
	api.Handle("/calendar/next", protect(handlers.NavigateCalendar(s.Registry, 1))).Methods("POST")
	api.Handle("/calendar/today", protect(handlers.TodayCalendar(s.Registry))).Methods("POST")
	api.Handle("/calendar/zoom", protect(handlers.ZoomCalendar(s.Registry))).Methods("POST")
	api.Handle("/calendar.ics", protect(handlers.ExportCalendar(s.Registry))).Methods("GET")

	// Personal event endpoints
	api.Handle("/events", protect(handlers.ListEvents(s.Registry))).Methods("GET")
	api.Handle("/events/import", protect(handlers.ImportEvents(s.Registry, s.Parser))).Methods("POST")

	// Edit dialog endpoints
	api.Handle("/edit", protect(handlers.GetEdit(s.Registry))).Methods("GET")
	api.Handle("/edit/open", protect(handlers.OpenEdit(s.Registry))).Methods("POST")
	api.Handle("/edit/save", protect(handlers.SaveEdit(s.Registry))).Methods("POST")
	api.Handle("/edit/delete", protect(handlers.DeleteEdit(s.Registry))).Methods("POST")
	api.Handle("/edit/cancel", protect(handlers.CancelEdit(s.Registry))).Methods("POST")

	// Grades endpoints
	api.Handle("/notes", protect(handlers.GetNotes(s.Notes))).Methods("GET")
	api.Handle("/notes", protect(handlers.AddNote(s.Notes))).Methods("POST")

	// Profile endpoints
	api.Handle("/profile", protect(handlers.GetProfile())).Methods("GET")
	api.Handle("/profile", protect(handlers.UpdateProfile(profileDeps))).Methods("PUT")
	api.Handle("/profile/avatar", protect(handlers.UploadAvatar(profileDeps))).Methods("POST")

	// Prometheus metrics
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler()).Methods("GET")
	}

	// Server-rendered week, also the snapshot target
	r.Handle("/calendar", protect(handlers.CalendarPage(s.Registry))).Methods("GET")

	if s.Avatars != nil {
		r.PathPrefix(AvatarPrefix).Handler(http.StripPrefix(AvatarPrefix, http.FileServer(http.Dir(s.Avatars.Dir()))))
	}

	// Serve static frontend files
	if s.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))
	}

	return wrap(r, s.CORSOrigins)
}

// wrap adds gzip compression, except on websocket upgrades which must reach
// the router with a hijackable writer, and CORS when origins are configured.
func wrap(r *mux.Router, origins []string) http.Handler {
	compressed := gorillahandlers.CompressHandler(r)
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if gorillaws.IsWebSocketUpgrade(req) {
			r.ServeHTTP(w, req)
			return
		}
		compressed.ServeHTTP(w, req)
	})

	if len(origins) > 0 {
		h = gorillahandlers.CORS(
			gorillahandlers.AllowedOrigins(origins),
			gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"}),
			gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
			gorillahandlers.AllowCredentials(),
		)(h)
	}
	return h
}
