package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/simplygenda/backend/internal/apperr"
	"github.com/simplygenda/backend/internal/storage/models"
)

type stubResolver struct {
	users map[string]*models.User
	err   error
}

func (s stubResolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	return s.users[token], s.err
}

func TestToken(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{"header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, "abc"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "def"}) }, "def"},
		{"none", func(r *http.Request) {}, ""},
		{"basic ignored", func(r *http.Request) { r.Header.Set("Authorization", "Basic xyz") }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/calendar", nil)
			tt.setup(r)
			if got := Token(r); got != tt.want {
				t.Errorf("Token() = %q, want %q", got, tt.want)
			}
		})
	}

	r := httptest.NewRequest("GET", "/api/ws?access_token=ghi", nil)
	if got := Token(r); got != "ghi" {
		t.Errorf("query Token() = %q", got)
	}
}

func TestAuth(t *testing.T) {
	resolver := stubResolver{users: map[string]*models.User{"good": {ID: "u1"}}}
	var seen string
	h := Auth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := UserFrom(r.Context())
		seen = u.ID + "/" + TokenFrom(r.Context())
	}))

	for token, want := range map[string]int{"": 401, "bad": 401, "good": 200} {
		r := httptest.NewRequest("GET", "/", nil)
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		if rec.Code != want {
			t.Errorf("token %q status = %d, want %d", token, rec.Code, want)
		}
	}
	if seen != "u1/good" {
		t.Errorf("context = %q", seen)
	}

	failing := Auth(stubResolver{err: errors.New("db down")})(http.NotFoundHandler())
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	failing.ServeHTTP(rec, r)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("resolver failure status = %d", rec.Code)
	}
}

func TestWriteAppError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.Invalid("end", "La fin doit être après le début."), http.StatusUnprocessableEntity, ErrValidation},
		{apperr.Collaborator("saving event", errors.New("timeout")), http.StatusBadGateway, ErrCollaborator},
		{errors.New("boom"), http.StatusInternalServerError, ErrInternalError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		WriteAppError(rec, tt.err)
		if rec.Code != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.status)
		}
		var body ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Error != tt.code {
			t.Errorf("%v: code = %q, want %q", tt.err, body.Error, tt.code)
		}
	}
}

func TestErrorRecovery(t *testing.T) {
	h := ErrorRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("render exploded")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}

	started := ErrorRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("partial"))
		panic("late failure")
	}))
	rec = httptest.NewRecorder()
	started.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusAccepted || rec.Body.String() != "partial" {
		t.Errorf("started response = %d %q", rec.Code, rec.Body.String())
	}
}

func TestLoggingUsesRouteAndUser(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	resolver := stubResolver{users: map[string]*models.User{"secret-token": {ID: "u1"}}}
	r := mux.NewRouter()
	r.Use(Logging)
	r.Handle("/api/items/{id}", Auth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})))
	r.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/items/42?access_token=secret-token", nil))
	line := logs.String()
	if !strings.Contains(line, "GET /api/items/{id} 200 2B") || !strings.Contains(line, "user=u1") {
		t.Errorf("log line = %q", line)
	}
	if strings.Contains(line, "secret-token") || strings.Contains(line, "/42") {
		t.Errorf("log line leaks request details: %q", line)
	}

	logs.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/health", nil))
	if !strings.Contains(logs.String(), "/api/health 200 0B") || !strings.Contains(logs.String(), "user=-") {
		t.Errorf("anonymous log line = %q", logs.String())
	}
}
