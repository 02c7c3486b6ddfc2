package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catalog-service/controllers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRegisterImportRoutes_RequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	limitCalls := 0
	limit := func(c *gin.Context) { limitCalls++; c.Next() }
	h := controllers.NewImportHandler(nil, nil, controllers.NewRequestValidator(), time.Minute, nil)
	RegisterImportRoutes(r, h, limit)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/template", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/imports/template", nil)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("X-User-Role", "customer")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/imports/template", nil)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("X-User-Role", "admin")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/imports", nil)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("X-User-Role", "admin")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, limitCalls)
}
