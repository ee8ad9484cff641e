package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestCountersRegistered(t *testing.T) {
	m := New()

	m.IncLogin("success")
	m.IncLogin("failure")
	m.IncDraftPopulated("pipeline")
	m.IncParseFailure()
	m.IncDispatch("smtp", "sent")
	m.IncBoardMove("generated", "approved")

	handler := promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		`commhub_logins_total{result="success"} 1`,
		`commhub_logins_total{result="failure"} 1`,
		`commhub_drafts_populated_total{source="pipeline"} 1`,
		"commhub_parse_failures_total 1",
		`commhub_dispatch_total{mode="smtp",status="sent"} 1`,
		`commhub_board_moves_total{from="generated",to="approved"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics
	m.IncLogin("success")
	m.IncDraftPopulated("upload")
	m.IncParseFailure()
	m.IncDispatch("simulated", "sent")
	m.IncBoardMove("approved", "sent")
}

func TestHTTPMiddlewareRecordsRequests(t *testing.T) {
	m := New()

	h := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	handler := promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})
	mrec := httptest.NewRecorder()
	handler.ServeHTTP(mrec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(mrec.Body.String(), `commhub_http_requests_total{method="GET",path="/missing",status="404"} 1`) {
		t.Error("request counter not recorded")
	}
}
