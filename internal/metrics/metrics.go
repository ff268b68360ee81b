// Package metrics exposes Prometheus metrics for the web server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "japanmethod"

// Checkout outcomes.
const (
	OutcomeCreated       = "created"
	OutcomeInvalidPlan   = "invalid_plan"
	OutcomeNotConfigured = "not_configured"
	OutcomeProviderError = "provider_error"
)

type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	quizCompletions *prometheus.CounterVec
	checkouts       *prometheus.CounterVec
}

// New creates the collectors on a dedicated registry so that parallel test servers do not collide.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5}, //nolint:mnd // seconds
			},
			[]string{"route"},
		),
		quizCompletions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quiz_completions_total",
				Help:      "Finished quizzes by recommended method",
			},
			[]string{"top_method"},
		),
		checkouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checkout_requests_total",
				Help:      "Checkout session requests by plan and outcome",
			},
			[]string{"plan", "outcome"},
		),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.quizCompletions,
		m.checkouts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct // defaults
	)
	return m
}

// Instrument counts and times the requests served by next under the route label.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) QuizCompleted(topMethod string) {
	m.quizCompletions.WithLabelValues(topMethod).Inc()
}

// CheckoutRequested counts a checkout attempt. Unknown plans are bucketed together to bound the label cardinality.
func (m *Metrics) CheckoutRequested(plan string, outcome string) {
	if outcome == OutcomeInvalidPlan {
		plan = "invalid"
	}
	m.checkouts.WithLabelValues(plan, outcome).Inc()
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}) //nolint:exhaustruct // defaults
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b) //nolint:wrapcheck // transparent wrapper.
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
