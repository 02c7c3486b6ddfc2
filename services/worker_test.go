package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"catalog-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobBackend struct {
	mu       sync.Mutex
	queue    []string
	jobs     map[string]*models.ImportJobRecord
	saved    []models.ImportJobRecord
	filesErr error
	released []string
}

func newFakeJobBackend(recs ...*models.ImportJobRecord) *fakeJobBackend {
	b := &fakeJobBackend{jobs: map[string]*models.ImportJobRecord{}}
	for _, r := range recs {
		b.jobs[r.ID] = r
		b.queue = append(b.queue, r.ID)
	}
	return b
}

func (b *fakeJobBackend) Next(ctx context.Context, timeout time.Duration) (string, error) {
	b.mu.Lock()
	if len(b.queue) > 0 {
		id := b.queue[0]
		b.queue = b.queue[1:]
		b.mu.Unlock()
		return id, nil
	}
	b.mu.Unlock()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(10 * time.Millisecond):
		return "", nil
	}
}

func (b *fakeJobBackend) Load(_ context.Context, id string) (*models.ImportJobRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	cp := *rec
	return &cp, nil
}

func (b *fakeJobBackend) Save(_ context.Context, rec *models.ImportJobRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saved = append(b.saved, *rec)
	b.jobs[rec.ID] = rec
	return nil
}

func (b *fakeJobBackend) Files(*models.ImportJobRecord) ([]models.ImportSource, []models.UploadedImage, error) {
	if b.filesErr != nil {
		return nil, nil, b.filesErr
	}
	return []models.ImportSource{{FileName: "a.csv"}}, nil, nil
}

func (b *fakeJobBackend) Release(rec *models.ImportJobRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = append(b.released, rec.ID)
	return nil
}

func (b *fakeJobBackend) statuses() []models.JobStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.JobStatus
	for _, r := range b.saved {
		if len(out) == 0 || out[len(out)-1] != r.Status {
			out = append(out, r.Status)
		}
	}
	return out
}

type fakeImporter struct {
	outcome *models.ImportOutcome
	err     error
	opts    ImportOptions
}

func (f *fakeImporter) Run(_ context.Context, sources []models.ImportSource, _ []models.UploadedImage, opts ImportOptions) (*models.ImportOutcome, error) {
	f.opts = opts
	if opts.Progress != nil {
		opts.Progress(models.ImportProgress{Stage: StageParsing})
		opts.Progress(models.ImportProgress{Current: 1, Total: 2, Stage: StageRows})
		opts.Progress(models.ImportProgress{Current: 2, Total: 2, Stage: StageRows})
	}
	return f.outcome, f.err
}

func pendingJob(id string, dryRun bool) *models.ImportJobRecord {
	return &models.ImportJobRecord{ImportJob: models.ImportJob{ID: id, Status: models.JobPending, DryRun: dryRun}}
}

func TestWorkerProcessDone(t *testing.T) {
	backend := newFakeJobBackend(pendingJob("job-1", true))
	importer := &fakeImporter{outcome: &models.ImportOutcome{SuccessCount: 2, TotalRows: 2, Errors: []string{}}}

	newImportWorker(backend, importer, nil).process(context.Background(), "job-1")

	assert.Equal(t, []models.JobStatus{models.JobProcessing, models.JobDone}, backend.statuses())
	final := backend.jobs["job-1"]
	require.NotNil(t, final.Result)
	assert.Equal(t, 2, final.Result.SuccessCount)
	assert.Equal(t, &models.ImportProgress{Current: 2, Total: 2, Stage: StageDone}, final.Progress)
	assert.Equal(t, []string{"job-1"}, backend.released)
	assert.Equal(t, "job-1", importer.opts.JobID)
	assert.True(t, importer.opts.DryRun)

	var stages []string
	for _, r := range backend.saved {
		if r.Progress != nil {
			stages = append(stages, r.Progress.Stage)
		}
	}
	assert.Contains(t, stages, StageParsing)
	assert.Contains(t, stages, StageRows)
}

func TestWorkerProcessFailures(t *testing.T) {
	t.Run("import error", func(t *testing.T) {
		backend := newFakeJobBackend(pendingJob("job-2", false))
		importer := &fakeImporter{err: ErrReferenceData}

		newImportWorker(backend, importer, nil).process(context.Background(), "job-2")

		final := backend.jobs["job-2"]
		assert.Equal(t, models.JobFailed, final.Status)
		assert.Equal(t, ErrReferenceData.Error(), final.Error)
		assert.Equal(t, []string{"job-2"}, backend.released)
	})

	t.Run("staged files unreadable", func(t *testing.T) {
		backend := newFakeJobBackend(pendingJob("job-3", false))
		backend.filesErr = errors.New("disk gone")
		importer := &fakeImporter{}

		newImportWorker(backend, importer, nil).process(context.Background(), "job-3")

		assert.Equal(t, models.JobFailed, backend.jobs["job-3"].Status)
		assert.Equal(t, "disk gone", backend.jobs["job-3"].Error)
		assert.Empty(t, importer.opts.JobID, "import never ran")
	})

	t.Run("unknown job", func(t *testing.T) {
		backend := newFakeJobBackend()
		newImportWorker(backend, &fakeImporter{}, nil).process(context.Background(), "missing")
		assert.Empty(t, backend.saved)
		assert.Empty(t, backend.released)
	})
}

func TestWorkerStartDrainsQueueAndStops(t *testing.T) {
	backend := newFakeJobBackend(pendingJob("job-a", false), pendingJob("job-b", false))
	importer := &fakeImporter{outcome: &models.ImportOutcome{Errors: []string{}}}

	ctx, cancel := context.WithCancel(context.Background())
	done := newImportWorker(backend, importer, nil).Start(ctx)

	require.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return len(backend.released) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, models.JobDone, backend.jobs["job-a"].Status)
	assert.Equal(t, models.JobDone, backend.jobs["job-b"].Status)
}
