package services

import (
	"context"
	"time"

	"catalog-service/models"
	aws_pkg "catalog-service/pkg/aws"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CloudWatchObserver publishes per-run import metrics.
type CloudWatchObserver struct {
	metrics *aws_pkg.MetricsClient
	service string
	logger  *zap.Logger
}

func NewCloudWatchObserver(metrics *aws_pkg.MetricsClient, service string, logger *zap.Logger) *CloudWatchObserver {
	return &CloudWatchObserver{metrics: metrics, service: service, logger: logger}
}

func (o *CloudWatchObserver) ObserveImport(ctx context.Context, outcome *models.ImportOutcome, elapsed time.Duration) {
	if !o.metrics.IsEnabled() {
		return
	}
	dims := map[string]string{"Service": o.service, "DryRun": boolDimension(outcome.DryRun)}
	batch := []types.MetricDatum{
		aws_pkg.Datum(aws_pkg.MetricImportRuns, 1, types.StandardUnitCount, dims),
		aws_pkg.Datum(aws_pkg.MetricImportRows, float64(outcome.TotalRows), types.StandardUnitCount, dims),
		aws_pkg.Datum(aws_pkg.MetricProductsImported, float64(outcome.SuccessCount), types.StandardUnitCount, dims),
		aws_pkg.Datum(aws_pkg.MetricImportErrors, float64(len(outcome.Errors)), types.StandardUnitCount, dims),
		aws_pkg.Datum(aws_pkg.MetricImportLatency, float64(elapsed.Milliseconds()), types.StandardUnitMilliseconds, dims),
	}
	// metrics must not hold up the response
	go func() {
		mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := o.metrics.PutMetricBatch(mctx, batch); err != nil {
			o.logger.Warn("Failed to publish import metrics", zap.Error(err))
		}
	}()
}

func boolDimension(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// ProductCacheVersionKey is the version counter the storefront product cache
// is keyed by; bumping it invalidates every cached product list.
const ProductCacheVersionKey = "products:version"

// CacheInvalidator bumps the product cache version after a run that inserted
// products.
type CacheInvalidator struct {
	redis  *redis.Client
	logger *zap.Logger
}

func NewCacheInvalidator(rdb *redis.Client, logger *zap.Logger) *CacheInvalidator {
	return &CacheInvalidator{redis: rdb, logger: logger}
}

func (c *CacheInvalidator) ObserveImport(ctx context.Context, outcome *models.ImportOutcome, _ time.Duration) {
	if outcome.DryRun || outcome.SuccessCount == 0 {
		return
	}
	ictx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	version, err := c.redis.Incr(ictx, ProductCacheVersionKey).Result()
	if err != nil {
		c.logger.Error("CRITICAL: Failed to invalidate product cache after import", zap.Error(err))
		return
	}
	c.logger.Info("Product cache invalidated", zap.Int64("new_version", version))
}
