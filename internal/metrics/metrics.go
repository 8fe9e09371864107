// Package metrics provides Prometheus instrumentation for the fraudlens service.
package metrics

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudlens",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fraudlens",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// DatasetLoadsTotal counts dataset loads by source ("all", "file", "synthetic").
	DatasetLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudlens",
			Name:      "dataset_loads_total",
			Help:      "Total dataset loads by source kind.",
		},
		[]string{"source"},
	)

	// DatasetRows tracks the row count of the currently loaded dataset.
	DatasetRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudlens",
		Name:      "dataset_rows",
		Help:      "Rows in the currently loaded dataset.",
	})

	// CatalogChangesTotal counts detected changes to the CSV catalog.
	CatalogChangesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fraudlens",
		Name:      "dataset_catalog_changes_total",
		Help:      "Detected changes to the data directory's CSV catalog.",
	})

	// ModelTrainsTotal counts training runs by result.
	ModelTrainsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudlens",
			Name:      "model_trains_total",
			Help:      "Total model training runs by result.",
		},
		[]string{"result"},
	)

	// ModelTrainDuration observes training latency.
	ModelTrainDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fraudlens",
		Name:      "model_train_duration_seconds",
		Help:      "Model training duration in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	// AnalyzeRequestsTotal counts single-transaction analyses by risk level.
	AnalyzeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudlens",
			Name:      "analyze_requests_total",
			Help:      "Total transaction analyses by resulting risk level.",
		},
		[]string{"risk_level"},
	)

	// SearchRequestsTotal counts search queries served.
	SearchRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fraudlens",
		Name:      "search_requests_total",
		Help:      "Total search queries served.",
	})

	// ExportsTotal counts CSV exports served.
	ExportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fraudlens",
		Name:      "exports_total",
		Help:      "Total CSV exports served.",
	})

	// ActiveWebSocketClients tracks connected WebSocket clients.
	ActiveWebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fraudlens",
			Name:      "active_websocket_clients",
			Help:      "Number of currently connected WebSocket clients.",
		},
	)

	// DBOpenConnections tracks open database connections.
	DBOpenConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudlens", Name: "db_open_connections",
		Help: "Number of open database connections.",
	})
	// DBIdleConnections tracks idle database connections.
	DBIdleConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudlens", Name: "db_idle_connections",
		Help: "Number of idle database connections.",
	})
	// DBInUseConnections tracks in-use database connections.
	DBInUseConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudlens", Name: "db_in_use_connections",
		Help: "Number of in-use database connections.",
	})
	// GoroutineCount tracks the current number of goroutines.
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudlens", Name: "goroutines",
		Help: "Current number of goroutines.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		DatasetLoadsTotal,
		DatasetRows,
		CatalogChangesTotal,
		ModelTrainsTotal,
		ModelTrainDuration,
		AnalyzeRequestsTotal,
		SearchRequestsTotal,
		ExportsTotal,
		ActiveWebSocketClients,
		DBOpenConnections,
		DBIdleConnections,
		DBInUseConnections,
		GoroutineCount,
	)
}

// StartDBStatsCollector periodically samples sql.DBStats and runtime goroutine
// count into Prometheus gauges. Call in a goroutine; exits when ctx is done.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			DBOpenConnections.Set(float64(stats.OpenConnections))
			DBIdleConnections.Set(float64(stats.Idle))
			DBInUseConnections.Set(float64(stats.InUse))
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
		}
	}
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
