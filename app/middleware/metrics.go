package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Total HTTP requests partitioned by method, route, and status code
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// Request duration in seconds partitioned by method, route, and status code
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// In-flight HTTP requests
	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Funnel counters
	leadsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_submitted_total",
			Help: "Total number of accepted lead submissions by funnel path",
		},
		[]string{"path"},
	)

	leadsConfirmedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_confirmed_total",
			Help: "Total number of successful email confirmations",
		},
	)

	confirmResendsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "confirm_resends_total",
			Help: "Total number of confirmation resend requests accepted",
		},
	)
)

// Funnel path labels for leads_submitted_total
const (
	SubmissionPathEmailConfirm = "email_confirmation"
	SubmissionPathDirect       = "direct"
)

// Metrics returns a Fiber v3 middleware that records basic Prometheus metrics.
// Labels are kept low-cardinality by using the matched route path when available.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		method := c.Method()
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path // Use route template to avoid high cardinality
		}

		labels := prometheus.Labels{
			"method": method,
			"route":  route,
			"status": strconv.Itoa(status),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}

// RecordLeadSubmitted counts an accepted submission by funnel path
func RecordLeadSubmitted(requiresConfirmation bool) {
	path := SubmissionPathDirect
	if requiresConfirmation {
		path = SubmissionPathEmailConfirm
	}
	leadsSubmittedTotal.WithLabelValues(path).Inc()
}

// RecordLeadConfirmed counts a successful email confirmation
func RecordLeadConfirmed() {
	leadsConfirmedTotal.Inc()
}

// RecordConfirmResend counts an accepted resend request
func RecordConfirmResend() {
	confirmResendsTotal.Inc()
}
