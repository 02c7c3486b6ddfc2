package services

import (
	"context"
	"errors"
	"time"

	"catalog-service/models"

	"go.uber.org/zap"
)

// Importer runs one catalog import.
type Importer interface {
	Run(ctx context.Context, sources []models.ImportSource, images []models.UploadedImage, opts ImportOptions) (*models.ImportOutcome, error)
}

// jobBackend is the part of JobStore the worker consumes.
type jobBackend interface {
	Next(ctx context.Context, timeout time.Duration) (string, error)
	Load(ctx context.Context, id string) (*models.ImportJobRecord, error)
	Save(ctx context.Context, rec *models.ImportJobRecord) error
	Files(rec *models.ImportJobRecord) ([]models.ImportSource, []models.UploadedImage, error)
	Release(rec *models.ImportJobRecord) error
}

const (
	workerPollTimeout    = 5 * time.Second
	progressSaveInterval = time.Second
	workerErrorBackoff   = 500 * time.Millisecond
	jobSaveTimeout       = 5 * time.Second
)

// ImportWorker drains the import queue one job at a time.
type ImportWorker struct {
	jobs     jobBackend
	importer Importer
	logger   *zap.Logger
}

func NewImportWorker(jobs *JobStore, importer Importer, logger *zap.Logger) *ImportWorker {
	return newImportWorker(jobs, importer, logger)
}

func newImportWorker(jobs jobBackend, importer Importer, logger *zap.Logger) *ImportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportWorker{jobs: jobs, importer: importer, logger: logger}
}

// Start runs the worker loop in the background until ctx is cancelled. The
// returned channel is closed once the loop has exited.
func (w *ImportWorker) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.logger.Info("Catalog import worker started", zap.String("queue", ImportQueueKey))
		for {
			if ctx.Err() != nil {
				w.logger.Info("Catalog import worker stopping")
				return
			}
			id, err := w.jobs.Next(ctx, workerPollTimeout)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				w.logger.Error("redis BLPop failed", zap.Error(err))
				select {
				case <-ctx.Done():
				case <-time.After(workerErrorBackoff):
				}
				continue
			}
			if id == "" {
				continue
			}
			w.process(ctx, id)
		}
	}()
	return done
}

func (w *ImportWorker) process(ctx context.Context, id string) {
	log := w.logger.With(zap.String("job_id", id))
	rec, err := w.jobs.Load(ctx, id)
	if err != nil {
		log.Error("Failed to read job metadata", zap.Error(err))
		return
	}
	defer func() {
		if err := w.jobs.Release(rec); err != nil {
			log.Warn("Failed to remove staged job files", zap.Error(err))
		}
	}()

	rec.Status = models.JobProcessing
	w.save(ctx, rec, log)

	sources, images, err := w.jobs.Files(rec)
	if err != nil {
		w.fail(ctx, rec, err, log)
		return
	}

	lastSave := time.Time{}
	lastStage := ""
	progress := func(p models.ImportProgress) {
		rec.Progress = &p
		if p.Stage != lastStage || p.Current == p.Total || time.Since(lastSave) >= progressSaveInterval {
			lastStage = p.Stage
			lastSave = time.Now()
			w.save(ctx, rec, log)
		}
	}

	outcome, err := w.importer.Run(ctx, sources, images, ImportOptions{
		JobID:    rec.ID,
		DryRun:   rec.DryRun,
		Progress: progress,
	})
	if err != nil {
		w.fail(ctx, rec, err, log)
		return
	}

	rec.Status = models.JobDone
	rec.Result = outcome
	rec.Progress = &models.ImportProgress{Current: outcome.TotalRows, Total: outcome.TotalRows, Stage: StageDone}
	w.save(ctx, rec, log)
	log.Info("Catalog import job finished", zap.Int("success", outcome.SuccessCount), zap.Int("errors", len(outcome.Errors)))
}

func (w *ImportWorker) fail(ctx context.Context, rec *models.ImportJobRecord, err error, log *zap.Logger) {
	log.Error("Catalog import job failed", zap.Error(err))
	rec.Status = models.JobFailed
	rec.Error = err.Error()
	w.save(ctx, rec, log)
}

// save outlives ctx so a job interrupted by shutdown still records its state.
func (w *ImportWorker) save(ctx context.Context, rec *models.ImportJobRecord, log *zap.Logger) {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), jobSaveTimeout)
	defer cancel()
	if err := w.jobs.Save(sctx, rec); err != nil {
		log.Error("Failed to store job metadata", zap.Error(err))
	}
}
