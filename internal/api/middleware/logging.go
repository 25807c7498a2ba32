package middleware

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// responseWriter records the status and body size of a response. It stays
// hijackable so websocket upgrades pass through the middleware chain.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
	wrote  bool
}

func wrapWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.wrote = true
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wrote = true
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	rw.wrote = true
	return h.Hijack()
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// requestLog collects what inner middleware learns about a request.
type requestLog struct {
	userID string
}

type logKey struct{}

// noteUser attaches the authenticated user to the request's log line.
func noteUser(ctx context.Context, userID string) {
	if l, ok := ctx.Value(logKey{}).(*requestLog); ok {
		l.userID = userID
	}
}

// routeOf returns the matched route template, or the raw path when no route
// matched. Templates keep tokens passed as query parameters and path
// variables out of logs and metric labels.
func routeOf(r *http.Request) string {
	if cur := mux.CurrentRoute(r); cur != nil {
		if tpl, err := cur.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

// Logging logs one line per request: method, route template, status, size,
// duration and, behind Auth, the user ID.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		entry := &requestLog{}
		wrapped := wrapWriter(w)

		next.ServeHTTP(wrapped, r.WithContext(context.WithValue(r.Context(), logKey{}, entry)))

		user := "-"
		if entry.userID != "" {
			user = entry.userID
		}
		log.Printf("%s %s %d %dB %s user=%s",
			r.Method, routeOf(r), wrapped.status, wrapped.size, time.Since(start).Round(time.Microsecond), user)
	})
}
