package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"catalog-service/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ImportMetrics holds the Prometheus collectors of the service, registered on
// its own registry so tests can build as many as they need.
type ImportMetrics struct {
	registry *prometheus.Registry

	ImportRuns       *prometheus.CounterVec
	RowsProcessed    prometheus.Counter
	ProductsImported prometheus.Counter
	ImportErrors     prometheus.Counter
	ImportDuration   *prometheus.HistogramVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

func NewImportMetrics(prefix string) *ImportMetrics {
	if prefix == "" {
		prefix = "catalog"
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &ImportMetrics{
		registry: reg,
		ImportRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_import_runs_total",
				Help: "Total number of catalog import runs",
			},
			[]string{"dry_run"},
		),
		RowsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_import_rows_total",
			Help: "Total number of spreadsheet rows read by imports",
		}),
		ProductsImported: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_products_imported_total",
			Help: "Total number of products created by imports",
		}),
		ImportErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_import_errors_total",
			Help: "Total number of file and row errors reported by imports",
		}),
		ImportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_import_duration_seconds",
				Help:    "Duration of catalog import runs in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"dry_run"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
}

// ObserveImport records one finished run.
func (m *ImportMetrics) ObserveImport(_ context.Context, outcome *models.ImportOutcome, elapsed time.Duration) {
	dry := strconv.FormatBool(outcome.DryRun)
	m.ImportRuns.WithLabelValues(dry).Inc()
	m.ImportDuration.WithLabelValues(dry).Observe(elapsed.Seconds())
	m.RowsProcessed.Add(float64(outcome.TotalRows))
	m.ImportErrors.Add(float64(len(outcome.Errors)))
	if !outcome.DryRun {
		m.ProductsImported.Add(float64(outcome.SuccessCount))
	}
}

// Middleware counts requests by route template.
func (m *ImportMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *ImportMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
