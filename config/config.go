package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"catalog-service/database"
	aws_pkg "catalog-service/pkg/aws"
	"catalog-service/repository"
	"catalog-service/services"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds every setting of catalog-service and its import CLI.
type Config struct {
	Port        string
	Env         string
	ServiceName string

	StoreDriver  string
	DynamoTables repository.DynamoTables
	Postgres     database.PostgresConfig
	MongoURL     string
	MongoDBName  string

	S3Endpoint       string
	S3Bucket         string
	CloudFrontDomain string

	RedisURL       string
	BulkStorageDir string
	AsyncWorker    bool

	Import services.ImportConfig

	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string
	MetricsPrefix       string

	CORSAllowedOrigins []string
	// UploadsPerMinute caps import requests per client IP.
	UploadsPerMinute int
}

// secretSource is the part of the Secrets Manager client LoadConfig needs.
type secretSource interface {
	GetSecret(ctx context.Context, name string) (string, error)
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

// LoadConfig reads the environment (and a .env file when present). With
// AWS_USE_SECRETS=true database credentials are overridden from Secrets
// Manager; a failed lookup keeps the environment values.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if awsCfg, err := aws_pkg.LoadAWSConfig(ctx); err == nil {
			applySecrets(ctx, cfg, aws_pkg.NewSecretsClient(awsCfg))
		} else {
			zap.L().Warn("Secrets Manager unavailable, using environment", zap.Error(err))
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() (*Config, error) {
	var errs []string
	intEnv := func(key string, fallback int) int {
		v, err := getEnvInt(key, fallback)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}

	persistRPS, err := getEnvFloat("IMPORT_PERSIST_RPS", 0)
	if err != nil {
		errs = append(errs, err.Error())
	}
	timeout, err := getEnvDuration("IMPORT_TIMEOUT", 10*time.Minute)
	if err != nil {
		errs = append(errs, err.Error())
	}

	awsEndpoint := os.Getenv("AWS_ENDPOINT")
	cfg := &Config{
		Port:        getEnv("PORT", "8085"),
		Env:         getEnv("APP_ENV", "development"),
		ServiceName: getEnv("SERVICE_NAME", "catalog-service"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", repository.DriverDynamo)),
		DynamoTables: repository.DynamoTables{
			Products:   getEnv("DDB_TABLE_PRODUCTS", "Products"),
			Categories: getEnv("DDB_TABLE_CATEGORIES", "Categories"),
			Brands:     getEnv("DDB_TABLE_BRANDS", "Brands"),
		},
		Postgres: database.PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Kolkata"),
		},
		MongoURL:         os.Getenv("MONGO_DB_URL"),
		MongoDBName:      getEnv("MONGO_DB_NAME", "catalog"),
		S3Endpoint:       getEnv("AWS_S3_ENDPOINT", awsEndpoint),
		S3Bucket:         getEnv("AWS_S3_BUCKET", "shopswift"),
		CloudFrontDomain: os.Getenv("AWS_CLOUDFRONT_DOMAIN"),
		RedisURL:         getEnv("REDIS_URL", "redis://redis:6379"),
		BulkStorageDir:   getEnv("BULK_STORAGE_DIR", "./data/catalog_imports"),
		AsyncWorker:      getEnv("IMPORT_ASYNC_WORKER", "true") == "true",
		Import: services.ImportConfig{
			Workers:         intEnv("IMPORT_WORKERS", 1),
			PersistRPS:      persistRPS,
			Timeout:         timeout,
			BrandVocabulary: splitList(os.Getenv("BRAND_VOCABULARY")),
			CurrencySymbol:  getEnv("CURRENCY_SYMBOL", "₹"),
			CurrencyLocale:  getEnv("CURRENCY_LOCALE", "en-IN"),
			ImagePrefix:     getEnv("AWS_S3_PREFIX", "products/"),
			EventTopicArn:   os.Getenv("IMPORT_SNS_TOPIC_ARN"),
		},
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "ShopSwift/Catalog"),
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", "/shopswift/services"),
		MetricsPrefix:       getEnv("METRICS_PREFIX", "catalog"),
		CORSAllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")),
		UploadsPerMinute:    intEnv("IMPORT_UPLOADS_PER_MINUTE", 10),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// applySecrets overrides database settings from catalog/DB_CREDENTIALS and
// catalog/MONGO_URL.
func applySecrets(ctx context.Context, cfg *Config, sm secretSource) {
	if m, err := sm.GetSecretMap(ctx, "catalog/DB_CREDENTIALS"); err == nil {
		override := func(dst *string, key string) {
			if v := m[key]; v != "" {
				*dst = v
			}
		}
		override(&cfg.Postgres.User, "POSTGRES_USER")
		override(&cfg.Postgres.Password, "POSTGRES_PASSWORD")
		override(&cfg.Postgres.DBName, "POSTGRES_DB")
		override(&cfg.Postgres.Host, "POSTGRES_HOST")
		override(&cfg.Postgres.Port, "POSTGRES_PORT")
	} else {
		zap.L().Debug("DB credentials secret not used", zap.Error(err))
	}
	if v, err := sm.GetSecret(ctx, "catalog/MONGO_URL"); err == nil && v != "" {
		cfg.MongoURL = v
	}
}

func (c *Config) validate() error {
	if err := repository.ValidateDriver(c.StoreDriver); err != nil {
		return err
	}
	if c.StoreDriver == repository.DriverMongo && c.MongoURL == "" {
		return fmt.Errorf("MONGO_DB_URL is required when STORE_DRIVER=mongo")
	}
	if c.Import.Workers < 1 {
		return fmt.Errorf("IMPORT_WORKERS must be at least 1")
	}
	if c.Import.PersistRPS < 0 {
		return fmt.Errorf("IMPORT_PERSIST_RPS must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s must be a duration like 90s or 10m", key)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
