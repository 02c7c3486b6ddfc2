package routes

import (
	"catalog-service/controllers"
	"catalog-service/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterImportRoutes mounts the admin-only catalog import API. uploadLimit
// guards only the upload endpoint.
func RegisterImportRoutes(r *gin.Engine, h *controllers.ImportHandler, uploadLimit gin.HandlerFunc) {
	imports := r.Group("/api/v1/imports", middleware.Identity(), middleware.AdminOnly())
	{
		imports.POST("", uploadLimit, h.CreateImport)
		imports.GET("/template", h.GetImportTemplate)
		imports.GET("/:id", h.GetImportJob)
	}
}
