package services

import (
	"context"
	"time"

	"catalog-service/models"
)

// BlobStore receives matched product images.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, key, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ImportObserver is told about every finished run, for metrics.
type ImportObserver interface {
	ObserveImport(ctx context.Context, outcome *models.ImportOutcome, elapsed time.Duration)
}

// ProgressFunc receives advisory progress updates. Calls are serialized.
type ProgressFunc func(models.ImportProgress)

// ImportOptions tune a single run.
type ImportOptions struct {
	JobID    string
	DryRun   bool
	Progress ProgressFunc
}

// ImportConfig holds the service-wide import settings.
type ImportConfig struct {
	// Workers bounds how many rows are processed at once; 1 keeps rows strictly sequential.
	Workers int
	// PersistRPS caps record store inserts per second; 0 disables the limit.
	PersistRPS float64
	// Timeout is the deadline of a whole run; 0 means none.
	Timeout         time.Duration
	BrandVocabulary []string
	CurrencySymbol  string
	CurrencyLocale  string
	ImagePrefix     string
	EventTopicArn   string
}

// Progress stage descriptions.
const (
	StageParsing   = "parsing files"
	StageReference = "loading categories and brands"
	StageRows      = "importing rows"
	StageDone      = "done"
)

// ImportCompletedEvent is published when a non-dry run finishes.
type ImportCompletedEvent struct {
	Type         string    `json:"type"`
	JobID        string    `json:"job_id,omitempty"`
	TotalRows    int       `json:"total_rows"`
	SuccessCount int       `json:"success_count"`
	ErrorCount   int       `json:"error_count"`
	ProductIDs   []string  `json:"product_ids"`
	CompletedAt  time.Time `json:"completed_at"`
}

const EventImportCompleted = "catalog.import.completed"
