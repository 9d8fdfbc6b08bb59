package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_leads_created_total",
			Help: "Total number of leads created",
		},
		[]string{"crm_type"},
	)

	conversions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_conversions_total",
			Help: "Lead to client conversions by outcome",
		},
		[]string{"crm_type", "outcome"},
	)

	commentsAdded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_comments_added_total",
			Help: "Total number of comments appended",
		},
		[]string{"crm_type", "target"},
	)

	callsLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_calls_logged_total",
			Help: "Total number of calls logged",
		},
		[]string{"crm_type", "status"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps label cardinality bounded: /lead/{id}, not every id.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// MetricsHandler serves GET /metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func RecordLeadCreated(crmType string) {
	leadsCreated.WithLabelValues(crmType).Inc()
}

// RecordConversion outcome is "converted", "existing" or "rejected".
func RecordConversion(crmType, outcome string) {
	conversions.WithLabelValues(crmType, outcome).Inc()
}

func RecordComment(crmType, target string) {
	commentsAdded.WithLabelValues(crmType, target).Inc()
}

func RecordCall(crmType, status string) {
	callsLogged.WithLabelValues(crmType, status).Inc()
}
