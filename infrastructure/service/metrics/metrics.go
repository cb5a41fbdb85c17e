// Package metrics exposes HTTP and admin-workflow metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fixora/complaintdesk/application/port/outbound"
)

const namespace = "complaintdesk"

type Recorder struct {
	registry *prometheus.Registry

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	bootstrapAttempts   *prometheus.CounterVec
	requestsSubmitted   *prometheus.CounterVec
	requestsReviewed    *prometheus.CounterVec
	orphanedRoles       prometheus.Counter
	notificationFailure *prometheus.CounterVec
}

// NewRecorder registers every collector on a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		bootstrapAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_bootstrap_attempts_total",
			Help:      "First-admin bootstrap attempts by outcome.",
		}, []string{"outcome"}),
		requestsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_requests_submitted_total",
			Help:      "Admin access requests submitted by outcome.",
		}, []string{"outcome"}),
		requestsReviewed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_requests_reviewed_total",
			Help:      "Admin access request reviews by action and outcome.",
		}, []string{"action", "outcome"}),
		orphanedRoles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphaned_admin_roles_cleaned_total",
			Help:      "Admin role rows removed because their identity no longer exists.",
		}),
		notificationFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Post-commit notification steps that failed.",
		}, []string{"kind"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpInFlight, r.httpRequestsTotal, r.httpRequestDuration,
		r.bootstrapAttempts, r.requestsSubmitted, r.requestsReviewed,
		r.orphanedRoles, r.notificationFailure,
	)
	return r
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) BootstrapAttempt(outcome string) {
	r.bootstrapAttempts.WithLabelValues(outcome).Inc()
}

func (r *Recorder) RequestSubmitted(outcome string) {
	r.requestsSubmitted.WithLabelValues(outcome).Inc()
}

func (r *Recorder) RequestReviewed(action, outcome string) {
	r.requestsReviewed.WithLabelValues(action, outcome).Inc()
}

func (r *Recorder) OrphanedRolesCleaned(count int) {
	r.orphanedRoles.Add(float64(count))
}

func (r *Recorder) NotificationFailed(kind string) {
	r.notificationFailure.WithLabelValues(kind).Inc()
}

// Instrument records latency and status per route template, so /requests/{id}/review
// stays a single series.
func (r *Recorder) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.httpInFlight.Inc()
		defer r.httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, req)

		route := "unmatched"
		if cr := mux.CurrentRoute(req); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		status := strconv.Itoa(sw.code)
		r.httpRequestDuration.WithLabelValues(req.Method, route, status).Observe(time.Since(start).Seconds())
		r.httpRequestsTotal.WithLabelValues(req.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

var _ outbound.WorkflowMetrics = (*Recorder)(nil)
