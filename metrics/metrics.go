// Package metrics exposes Prometheus collectors for the HTTP surface and the
// ingestion pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regportal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "regportal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	submissionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regportal_submission_transitions_total",
			Help: "Submission lifecycle transitions by resulting state",
		},
		[]string{"state"},
	)

	filesValidated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regportal_files_validated_total",
			Help: "Uploaded files run through structural validation",
		},
		[]string{"return_type", "valid"},
	)

	findingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regportal_validation_findings_total",
			Help: "Structural validation errors and warnings",
		},
		[]string{"kind"},
	)

	submissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "regportal_submission_processing_seconds",
			Help:    "Time to store, validate and persist one submission",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)
)

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "unknown"
	}
}

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, route string, statusCode int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, statusClass(statusCode)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordTransition(state string) {
	submissionTransitions.WithLabelValues(state).Inc()
}

func RecordFile(returnType string, valid bool, errs, warnings int) {
	v := "false"
	if valid {
		v = "true"
	}
	filesValidated.WithLabelValues(returnType, v).Inc()
	findingsTotal.WithLabelValues("error").Add(float64(errs))
	findingsTotal.WithLabelValues("warning").Add(float64(warnings))
}

func ObserveSubmission(d time.Duration) {
	submissionDuration.Observe(d.Seconds())
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
