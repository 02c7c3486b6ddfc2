package services

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"catalog-service/models"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: "localhost:0",
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return nil, errors.New("redis disabled in tests")
		},
		MaxRetries: -1,
	})
}

func TestStagedFilesKeepUploadOrder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "job")
	sources := []models.ImportSource{
		{FileName: "zeta.csv", Data: []byte("z")},
		{FileName: "alpha_v2.xlsx", Data: []byte("a")},
	}
	images := []models.UploadedImage{
		{FileName: `C:\pics\Kajal.jpg`, Data: []byte("k")},
		{FileName: "", Data: []byte("?")},
	}
	require.NoError(t, stageFiles(dir, sources, images))

	gotSources, gotImages, err := loadStaged(dir)
	require.NoError(t, err)
	assert.Equal(t, sources, gotSources)
	require.Len(t, gotImages, 2)
	assert.Equal(t, "Kajal.jpg", gotImages[0].FileName)
	assert.Equal(t, "upload", gotImages[1].FileName)
	assert.Equal(t, []byte("?"), gotImages[1].Data)
}

func TestStagedNames(t *testing.T) {
	assert.Equal(t, "0003_x.csv", stagedName(3, `..\evil/x.csv`))
	assert.Equal(t, "0012_upload", stagedName(12, ""))
	assert.Equal(t, "my_file.csv", originalName("0003_my_file.csv"))
	assert.Equal(t, "plain", originalName("plain"))
}

func TestLoadStagedMissingDir(t *testing.T) {
	sources, images, err := loadStaged(filepath.Join(t.TempDir(), "gone"))
	require.NoError(t, err)
	assert.Empty(t, sources)
	assert.Empty(t, images)
}

func TestJobStoreRelease(t *testing.T) {
	store := NewJobStore(newTestRedisClient(), t.TempDir(), nil)
	dir := filepath.Join(t.TempDir(), "job")
	require.NoError(t, stageFiles(dir, []models.ImportSource{{FileName: "a.csv"}}, nil))

	rec := &models.ImportJobRecord{StagingDir: dir}
	sources, _, err := store.Files(rec)
	require.NoError(t, err)
	assert.Len(t, sources, 1)

	require.NoError(t, store.Release(rec))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Release(&models.ImportJobRecord{}))
}

func TestJobStoreSubmitCleansUpWhenRedisFails(t *testing.T) {
	root := t.TempDir()
	store := NewJobStore(newTestRedisClient(), root, nil)

	job, err := store.Submit(context.Background(),
		[]models.ImportSource{{FileName: "a.csv", Data: []byte("name\n")}}, nil, false, "admin-1")
	require.Error(t, err)
	assert.Nil(t, job)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "staged files are removed")
}

func TestJobStoreLoadRedisError(t *testing.T) {
	store := NewJobStore(newTestRedisClient(), t.TempDir(), nil)
	_, err := store.Get(context.Background(), "0b9f8a52-8c0d-4c59-a2b4-6f0f5f1e6e1d")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrJobNotFound))
}
