package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/simplygenda/backend/internal/metrics"
)

// Metrics records request counts and durations labelled by the matched route
// template, so path variables do not explode the label space.
func Metrics(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapWriter(w)

			next.ServeHTTP(wrapped, r)

			m.ObserveRequest(routeOf(r), wrapped.status, time.Since(start))
		})
	}
}
