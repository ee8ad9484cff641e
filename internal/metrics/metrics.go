// Package metrics exposes Prometheus metrics for the web app: logins,
// draft activity, dispatch outcomes and HTTP request telemetry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for commhub
type Metrics struct {
	LoginsTotal          *prometheus.CounterVec
	DraftsPopulatedTotal *prometheus.CounterVec
	ParseFailuresTotal   prometheus.Counter
	DispatchTotal        *prometheus.CounterVec
	BoardMovesTotal      *prometheus.CounterVec

	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commhub_logins_total",
				Help: "Total number of login attempts",
			},
			[]string{"result"},
		),
		DraftsPopulatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commhub_drafts_populated_total",
				Help: "Total number of drafts loaded into a workspace",
			},
			[]string{"source"},
		),
		ParseFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "commhub_parse_failures_total",
				Help: "Total number of uploaded message files that failed to parse",
			},
		),
		DispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commhub_dispatch_total",
				Help: "Total number of dispatch attempts",
			},
			[]string{"mode", "status"},
		),
		BoardMovesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commhub_board_moves_total",
				Help: "Total number of board records moved between stages",
			},
			[]string{"from", "to"},
		),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commhub_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "commhub_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.LoginsTotal,
		m.DraftsPopulatedTotal,
		m.ParseFailuresTotal,
		m.DispatchTotal,
		m.BoardMovesTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncLogin increments the login counter with the given result label
func (m *Metrics) IncLogin(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

// IncDraftPopulated increments the drafts counter for the given source
func (m *Metrics) IncDraftPopulated(source string) {
	if m == nil {
		return
	}
	m.DraftsPopulatedTotal.WithLabelValues(source).Inc()
}

// IncParseFailure increments the upload parse failure counter
func (m *Metrics) IncParseFailure() {
	if m == nil {
		return
	}
	m.ParseFailuresTotal.Inc()
}

// IncDispatch increments the dispatch counter
func (m *Metrics) IncDispatch(mode, status string) {
	if m == nil {
		return
	}
	m.DispatchTotal.WithLabelValues(mode, status).Inc()
}

// IncBoardMove increments the board move counter
func (m *Metrics) IncBoardMove(from, to string) {
	if m == nil {
		return
	}
	m.BoardMovesTotal.WithLabelValues(from, to).Inc()
}
