package app

import (
	"context"
	"fmt"

	"catalog-service/config"
	"catalog-service/database"
	"catalog-service/models"
	"catalog-service/repository"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// OpenStores connects the record store selected by STORE_DRIVER. The
// returned func releases the connection.
func OpenStores(ctx context.Context, cfg *config.Config, awsCfg sdkaws.Config, log *zap.Logger) (repository.Stores, func(), error) {
	switch cfg.StoreDriver {
	case repository.DriverPostgres:
		db, err := database.ConnectPostgres(cfg.Postgres, log, &models.Product{}, &models.Category{}, &models.Brand{})
		if err != nil {
			return repository.Stores{}, nil, err
		}
		closeFn := func() {
			if err := database.ClosePostgres(db); err != nil {
				log.Error("Database close error", zap.Error(err))
			}
		}
		return repository.NewGormStores(db), closeFn, nil

	case repository.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg.MongoURL, cfg.MongoDBName)
		if err != nil {
			return repository.Stores{}, nil, err
		}
		log.Info("Connected to MongoDB", zap.String("db", cfg.MongoDBName))
		closeFn := func() {
			if err := database.CloseMongo(client); err != nil {
				log.Error("MongoDB disconnect error", zap.Error(err))
			}
		}
		return repository.NewMongoStores(db), closeFn, nil

	case repository.DriverDynamo:
		client := dynamodb.NewFromConfig(awsCfg)
		log.Info("Using DynamoDB record store",
			zap.String("products", cfg.DynamoTables.Products),
			zap.String("categories", cfg.DynamoTables.Categories),
			zap.String("brands", cfg.DynamoTables.Brands),
		)
		return repository.NewDynamoStores(client, cfg.DynamoTables), func() {}, nil
	}
	return repository.Stores{}, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
