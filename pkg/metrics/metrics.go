package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campusrecruit",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campusrecruit",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	applicationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "campusrecruit",
			Subsystem: "applications",
			Name:      "created_total",
			Help:      "Applications submitted by students.",
		},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campusrecruit",
			Subsystem: "applications",
			Name:      "status_updates_total",
			Help:      "Committed application status updates by target status.",
		},
		[]string{"status"},
	)

	notificationDispatch = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campusrecruit",
			Subsystem: "notifications",
			Name:      "dispatch_total",
			Help:      "Email dispatch attempts by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	notificationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campusrecruit",
			Subsystem: "notifications",
			Name:      "dispatch_duration_seconds",
			Help:      "Duration of email dispatch attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		applicationsCreated,
		statusTransitions,
		notificationDispatch,
		notificationDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request count and latency keyed by route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if path == "/metrics" {
			return
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordApplicationCreated() {
	applicationsCreated.Inc()
}

func RecordStatusTransition(status string) {
	statusTransitions.WithLabelValues(status).Inc()
}

// RecordDispatch records one email dispatch attempt. outcome is "sent",
// "failed" or "skipped".
func RecordDispatch(kind, outcome string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	notificationDispatch.WithLabelValues(kind, outcome).Inc()
	notificationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}
