package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal - общее количество запросов
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration - длительность запросов
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Длительность HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// RequestsInFlight - количество запросов в обработке
	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Текущее количество запросов в обработке",
		},
	)

	// VerificationOutcomes - решения водителей по проверкам при получении
	VerificationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickup_verification_outcomes_total",
			Help: "Решения водителей по проверкам при получении",
		},
		[]string{"decision"},
	)

	// ClientResponses - ответы клиентов на проверки с расхождениями
	ClientResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickup_verification_client_responses_total",
			Help: "Ответы клиентов на проверки с расхождениями",
		},
		[]string{"response", "source"},
	)

	// GeoRequestsTotal - общее количество запросов к гео-API
	GeoRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geo_requests_total",
			Help: "Общее количество запросов к гео-API",
		},
		[]string{"endpoint", "status", "cached"},
	)

	// GeoRequestDuration - длительность запросов к гео-API
	GeoRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geo_request_duration_seconds",
			Help:    "Длительность запросов к гео-API в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "cached"},
	)
)

// PrometheusMiddleware собирает метрики для HTTP запросов
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		RequestsInFlight.Inc()
		defer RequestsInFlight.Dec()

		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()

		status := strconv.Itoa(c.Writer.Status())
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		RequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// TrackGeoRequest отслеживает запрос к гео-API
func TrackGeoRequest(endpoint string, status string, cached bool, duration time.Duration) {
	cachedStr := strconv.FormatBool(cached)
	GeoRequestsTotal.WithLabelValues(endpoint, status, cachedStr).Inc()
	GeoRequestDuration.WithLabelValues(endpoint, cachedStr).Observe(duration.Seconds())
}
