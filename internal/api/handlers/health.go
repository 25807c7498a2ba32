package handlers

import (
	"net/http"
	"time"

	"github.com/simplygenda/backend/internal/agenda"
	"github.com/simplygenda/backend/internal/api/middleware"
	"github.com/simplygenda/backend/internal/storage"
	"github.com/simplygenda/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.PingContext(r.Context()) == nil

		status := "healthy"
		code := http.StatusOK
		if !dbConnected {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		writeJSON(w, code, HealthResponse{Status: status, DBConnected: dbConnected})
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	Version          string `json:"version"`
	DatabaseDriver   string `json:"database_driver"`
	ActiveSessions   int    `json:"active_sessions"`
	WebSocketClients int    `json:"websocket_clients"`
	UserConnections  int    `json:"user_connections"`
	NextTickAt       string `json:"next_tick_at,omitempty"`
}

// Status returns a handler that provides system status information.
func Status(db *storage.DB, hub *websocket.Hub, registry *agenda.Registry, scheduler *agenda.Scheduler, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := StatusResponse{
			Version:          version,
			DatabaseDriver:   db.Driver(),
			ActiveSessions:   registry.Len(),
			WebSocketClients: hub.ClientCount(),
		}
		if user, ok := middleware.UserFrom(r.Context()); ok {
			response.UserConnections = hub.UserClientCount(user.ID)
		}
		if scheduler != nil {
			if next := scheduler.NextTick(); next != nil {
				response.NextTickAt = next.Format(time.RFC3339)
			}
		}
		writeJSON(w, http.StatusOK, response)
	}
}
