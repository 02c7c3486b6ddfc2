package controllers

import (
	"context"
	"time"

	"catalog-service/models"
	"catalog-service/services"
)

const DefaultContextTimeout = 30 * time.Second

// ImportServiceAPI runs an import inline.
type ImportServiceAPI interface {
	Run(ctx context.Context, sources []models.ImportSource, images []models.UploadedImage, opts services.ImportOptions) (*models.ImportOutcome, error)
}

// ImportJobQueue accepts asynchronous imports and reports on them.
type ImportJobQueue interface {
	Submit(ctx context.Context, sources []models.ImportSource, images []models.UploadedImage, dryRun bool, requestedBy string) (*models.ImportJob, error)
	Get(ctx context.Context, id string) (*models.ImportJob, error)
}
