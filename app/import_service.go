package app

import (
	"catalog-service/config"
	aws_pkg "catalog-service/pkg/aws"
	"catalog-service/repository"
	"catalog-service/services"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"
)

// NewImportService builds the import pipeline on top of stores with the S3
// blob store and, when a topic is configured, the SNS publisher.
func NewImportService(cfg *config.Config, awsCfg sdkaws.Config, stores repository.Stores, log *zap.Logger, observers ...services.ImportObserver) *services.ImportService {
	s3Client := aws_pkg.NewS3Client(awsCfg, cfg.S3Endpoint)
	blobs := aws_pkg.NewS3BlobStore(s3Client, cfg.S3Bucket, cfg.S3Endpoint, cfg.CloudFrontDomain)

	var publisher aws_pkg.SNSPublisher
	if cfg.Import.EventTopicArn != "" {
		publisher = aws_pkg.NewSNSClient(awsCfg)
	}

	return services.NewImportService(
		stores.Products,
		stores.Categories,
		stores.Brands,
		blobs,
		publisher,
		cfg.Import,
		log,
		observers...,
	)
}
