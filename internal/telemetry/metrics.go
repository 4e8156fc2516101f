package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the service.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	IngestRuns       *prometheus.CounterVec
	InsightFallbacks prometheus.Counter
	ConnectedAPIs    prometheus.Gauge
}

// NewMetrics creates and registers all instruments under namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests served",
			},
			[]string{"path", "method", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"path"},
		),
		IngestRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_runs_total",
				Help:      "Ingestion runs by outcome",
			},
			[]string{"outcome"},
		),
		InsightFallbacks: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "insight_fallbacks_total",
				Help:      "AI insight requests that fell back to the rule engine",
			},
		),
		ConnectedAPIs: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connected_integrations",
				Help:      "Number of upstream APIs with live credentials",
			},
		),
	}
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records every request against the instruments.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}
