package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catalog-service/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveImport(t *testing.T) {
	m := NewImportMetrics("test")

	m.ObserveImport(context.Background(), &models.ImportOutcome{SuccessCount: 3, TotalRows: 5, Errors: []string{"a", "b"}}, 2*time.Second)
	m.ObserveImport(context.Background(), &models.ImportOutcome{SuccessCount: 4, TotalRows: 4, DryRun: true}, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportRuns.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportRuns.WithLabelValues("true")))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.RowsProcessed))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ProductsImported))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ImportErrors))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewImportMetrics("test")

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/v1/imports/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/imports/abc", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/imports/:id", "404")))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_http_requests_total")
	assert.Contains(t, rec.Body.String(), "test_import_rows_total")
}
