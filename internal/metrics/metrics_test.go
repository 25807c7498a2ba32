package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Rendered()
	m.Rendered()
	m.CollaboratorError("load")
	m.ValidationFailure("end")
	m.ObserveRequest("/api/calendar", 200, 10*time.Millisecond)

	if got := testutil.ToFloat64(m.renders); got != 2 {
		t.Errorf("renders = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.collaboratorErrors.WithLabelValues("load")); got != 1 {
		t.Errorf("collaborator errors = %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"agenda_renders_total 2", `http_requests_total{route="/api/calendar",status="200"} 1`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.Rendered()
	m.CollaboratorError("x")
	m.ObserveRequest("/", 200, time.Second)
	m.SetActiveSessions(3)
}
