package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"catalog-service/middleware"
	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImportHandler serves catalog imports over HTTP.
type ImportHandler struct {
	importer  ImportServiceAPI
	jobs      ImportJobQueue
	validator *RequestValidator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewImportHandler wires the handler. jobs may be nil, in which case async
// requests are refused.
func NewImportHandler(importer ImportServiceAPI, jobs ImportJobQueue, validator *RequestValidator, timeout time.Duration, logger *zap.Logger) *ImportHandler {
	if timeout <= 0 {
		timeout = DefaultContextTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportHandler{
		importer:  importer,
		jobs:      jobs,
		validator: validator,
		timeout:   timeout,
		logger:    logger,
	}
}

// CreateImport imports the uploaded spreadsheets, inline or as a queued job.
func (h *ImportHandler) CreateImport(c *gin.Context) {
	flags, err := h.validator.ParseImportFlags(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sources, images, err := h.validator.ReadUploads(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if flags.Async {
		h.handleAsyncImport(c, flags, sources, images)
		return
	}

	// the import outlives the router-wide request timeout
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.timeout)
	defer cancel()

	outcome, err := h.importer.Run(ctx, sources, images, services.ImportOptions{DryRun: flags.DryRun})
	if err != nil {
		if errors.Is(err, services.ErrReferenceData) {
			h.logger.Error("Catalog import aborted", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Categories and brands could not be loaded, nothing was imported"})
			return
		}
		h.logger.Error("Catalog import failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Import failed"})
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *ImportHandler) handleAsyncImport(c *gin.Context, flags ImportFlags, sources []models.ImportSource, images []models.UploadedImage) {
	if h.jobs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Async imports are not available"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultContextTimeout)
	defer cancel()

	job, err := h.jobs.Submit(ctx, sources, images, flags.DryRun, middleware.UserID(c))
	if err != nil {
		h.logger.Error("Failed to enqueue catalog import", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue import job"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"job_id":  job.ID,
		"status":  job.Status,
		"message": "Import queued for processing",
	})
}

// GetImportJob reports the status, progress and result of a queued import.
func (h *ImportHandler) GetImportJob(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return
	}
	if h.jobs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	job, err := h.jobs.Get(ctx, id)
	if errors.Is(err, services.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to get job status", zap.String("job_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve job status"})
		return
	}
	c.JSON(http.StatusOK, job)
}
