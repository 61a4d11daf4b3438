package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashcard_generations_total",
			Help: "Total number of AI generation attempts",
		},
		[]string{"status", "model"},
	)

	llmCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "LLM chat-completion call duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	flashcardsAcceptedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashcards_accepted_total",
			Help: "Total number of AI proposals accepted into flashcards",
		},
		[]string{"edited"},
	)
)

// MetricsMiddleware collects Prometheus metrics for each HTTP request.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		httpRequestsInFlight.Inc()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		httpRequestsInFlight.Dec()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// RecordGeneration records one AI generation attempt.
func RecordGeneration(success bool, model string, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	generationsTotal.WithLabelValues(status, model).Inc()
	llmCallDuration.Observe(duration.Seconds())
}

// RecordAccepted records accepted proposals by edit status.
func RecordAccepted(uneditedCount, editedCount int) {
	flashcardsAcceptedTotal.WithLabelValues("false").Add(float64(uneditedCount))
	flashcardsAcceptedTotal.WithLabelValues("true").Add(float64(editedCount))
}
