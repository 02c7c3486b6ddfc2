package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"catalog-service/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ImportQueueKey     = "catalog_import:queue"
	importJobKeyPrefix = "catalog_import:job:"
	importJobTTL       = 24 * time.Hour

	sourcesDir = "sources"
	imagesDir  = "images"
)

var ErrJobNotFound = errors.New("import job not found")

// JobStore keeps asynchronous import jobs: uploads are staged on disk under
// one directory per job, metadata lives in Redis and job IDs are queued on a
// Redis list.
type JobStore struct {
	redis  *redis.Client
	dir    string
	logger *zap.Logger
}

func NewJobStore(rdb *redis.Client, storageDir string, logger *zap.Logger) *JobStore {
	if storageDir == "" {
		storageDir = "./data/catalog_imports"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobStore{redis: rdb, dir: storageDir, logger: logger}
}

func jobKey(id string) string {
	return importJobKeyPrefix + id
}

// Submit stages the uploads, records a pending job and queues it.
func (s *JobStore) Submit(ctx context.Context, sources []models.ImportSource, images []models.UploadedImage, dryRun bool, requestedBy string) (*models.ImportJob, error) {
	id := uuid.New().String()
	dir := filepath.Join(s.dir, id)
	if err := stageFiles(dir, sources, images); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, src.FileName)
	}
	now := time.Now().UTC()
	rec := &models.ImportJobRecord{
		ImportJob: models.ImportJob{
			ID:          id,
			Status:      models.JobPending,
			DryRun:      dryRun,
			SourceNames: names,
			ImageCount:  len(images),
			RequestedBy: requestedBy,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		StagingDir: dir,
	}

	if err := s.Save(ctx, rec); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	if err := s.redis.RPush(ctx, ImportQueueKey, id).Err(); err != nil {
		_ = os.RemoveAll(dir)
		s.redis.Del(ctx, jobKey(id))
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.logger.Info("Catalog import job queued",
		zap.String("job_id", id),
		zap.Int("files", len(sources)),
		zap.Int("images", len(images)),
		zap.Bool("dry_run", dryRun),
	)
	job := rec.ImportJob
	return &job, nil
}

// Get returns the public view of a job.
func (s *JobStore) Get(ctx context.Context, id string) (*models.ImportJob, error) {
	rec, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	job := rec.ImportJob
	return &job, nil
}

func (s *JobStore) Load(ctx context.Context, id string) (*models.ImportJobRecord, error) {
	val, err := s.redis.Get(ctx, jobKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job metadata: %w", err)
	}
	var rec models.ImportJobRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("failed to parse job metadata: %w", err)
	}
	return &rec, nil
}

// Save writes rec and refreshes its 24h expiry.
func (s *JobStore) Save(ctx context.Context, rec *models.ImportJobRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal job metadata: %w", err)
	}
	if err := s.redis.Set(ctx, jobKey(rec.ID), data, importJobTTL).Err(); err != nil {
		return fmt.Errorf("failed to store job metadata: %w", err)
	}
	return nil
}

// Next blocks for up to timeout waiting for a queued job ID. It returns ""
// when nothing arrived in time.
func (s *JobStore) Next(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := s.redis.BLPop(ctx, timeout, ImportQueueKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if len(res) < 2 {
		return "", nil
	}
	return res[1], nil
}

// Files reads back the uploads staged for rec.
func (s *JobStore) Files(rec *models.ImportJobRecord) ([]models.ImportSource, []models.UploadedImage, error) {
	return loadStaged(rec.StagingDir)
}

// Release removes the staged uploads of a finished job.
func (s *JobStore) Release(rec *models.ImportJobRecord) error {
	if rec.StagingDir == "" {
		return nil
	}
	return os.RemoveAll(rec.StagingDir)
}

// stageFiles writes uploads as NNNN_<name> so reading the directory back
// returns them in upload order.
func stageFiles(dir string, sources []models.ImportSource, images []models.UploadedImage) error {
	srcDir := filepath.Join(dir, sourcesDir)
	imgDir := filepath.Join(dir, imagesDir)
	for _, d := range []string{srcDir, imgDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	for i, src := range sources {
		if err := os.WriteFile(filepath.Join(srcDir, stagedName(i, src.FileName)), src.Data, 0o644); err != nil {
			return fmt.Errorf("failed to persist file %q: %w", src.FileName, err)
		}
	}
	for i, img := range images {
		if err := os.WriteFile(filepath.Join(imgDir, stagedName(i, img.FileName)), img.Data, 0o644); err != nil {
			return fmt.Errorf("failed to persist image %q: %w", img.FileName, err)
		}
	}
	return nil
}

func stagedName(i int, name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	return fmt.Sprintf("%04d_%s", i, base)
}

func originalName(staged string) string {
	if i := strings.IndexByte(staged, '_'); i >= 0 {
		return staged[i+1:]
	}
	return staged
}

func loadStaged(dir string) ([]models.ImportSource, []models.UploadedImage, error) {
	var sources []models.ImportSource
	err := readStagedDir(filepath.Join(dir, sourcesDir), func(name string, data []byte) {
		sources = append(sources, models.ImportSource{FileName: name, Data: data})
	})
	if err != nil {
		return nil, nil, err
	}
	var images []models.UploadedImage
	err = readStagedDir(filepath.Join(dir, imagesDir), func(name string, data []byte) {
		images = append(images, models.UploadedImage{FileName: name, Data: data})
	})
	if err != nil {
		return nil, nil, err
	}
	return sources, images, nil
}

func readStagedDir(dir string, add func(name string, data []byte)) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("failed to read staged file %s: %w", e.Name(), err)
		}
		add(originalName(e.Name()), data)
	}
	return nil
}
