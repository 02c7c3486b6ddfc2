package services

import (
	"context"
	"testing"
	"time"

	"catalog-service/models"
	aws_pkg "catalog-service/pkg/aws"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCacheInvalidatorSkipsRunsWithoutInserts(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	inv := NewCacheInvalidator(newTestRedisClient(), zap.New(core))

	inv.ObserveImport(context.Background(), &models.ImportOutcome{SuccessCount: 3, DryRun: true}, time.Second)
	inv.ObserveImport(context.Background(), &models.ImportOutcome{SuccessCount: 0}, time.Second)
	assert.Zero(t, logs.Len())
}

func TestCacheInvalidatorLogsRedisFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	inv := NewCacheInvalidator(newTestRedisClient(), zap.New(core))

	assert.NotPanics(t, func() {
		inv.ObserveImport(context.Background(), &models.ImportOutcome{SuccessCount: 1}, time.Second)
	})
	entries := logs.FilterMessageSnippet("Failed to invalidate product cache").All()
	assert.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestCloudWatchObserverDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := NewCloudWatchObserver(aws_pkg.NewMetricsClient(sdkaws.Config{}, "Test", false), "catalog-service", zap.New(core))
	obs.ObserveImport(context.Background(), &models.ImportOutcome{TotalRows: 1}, time.Millisecond)

	nilObs := NewCloudWatchObserver(nil, "catalog-service", zap.New(core))
	assert.NotPanics(t, func() {
		nilObs.ObserveImport(context.Background(), &models.ImportOutcome{}, 0)
	})
	assert.Zero(t, logs.Len())
}

func TestBoolDimension(t *testing.T) {
	assert.Equal(t, "true", boolDimension(true))
	assert.Equal(t, "false", boolDimension(false))
}
