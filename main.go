package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-service/app"
	"catalog-service/config"
	"catalog-service/controllers"
	"catalog-service/metrics"
	"catalog-service/middleware"
	aws_pkg "catalog-service/pkg/aws"
	"catalog-service/pkg/logger"
	"catalog-service/routes"
	"catalog-service/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// --- 1. Configuration & logging ---
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Initialize(os.Getenv("APP_ENV"))
		logger.Log.Fatal("Failed to load configuration", zap.Error(err))
	}

	awsCfg, err := aws_pkg.LoadAWSConfig(context.Background())
	if err != nil {
		logger.Initialize(cfg.Env)
		logger.Log.Fatal("Failed to load AWS config", zap.Error(err))
	}

	if cfg.CloudWatchEnabled {
		cw, err := aws_pkg.NewCloudWatchLogsClient(context.Background(), awsCfg, cfg.CloudWatchLogGroup, cfg.ServiceName)
		if err != nil {
			logger.Initialize(cfg.Env)
			logger.Log.Warn("CloudWatch Logs unavailable, logging to console only", zap.Error(err))
		} else {
			logger.InitializeWithWriter(cfg.Env, cw)
		}
	} else {
		logger.Initialize(cfg.Env)
	}
	log := logger.Log
	defer log.Sync()

	// --- 2. Stores & clients ---
	stores, closeStores, err := app.OpenStores(context.Background(), cfg, awsCfg, log)
	if err != nil {
		log.Fatal("Failed to open record store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStores()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Warn("Failed to parse REDIS_URL, falling back to default", zap.Error(err))
		redisOpts = &redis.Options{Addr: "redis:6379", DB: 0}
	}
	rdb := redis.NewClient(redisOpts)

	metricsClient := aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)
	promMetrics := metrics.NewImportMetrics(cfg.MetricsPrefix)

	// --- 3. Dependency injection ---
	importService := app.NewImportService(cfg, awsCfg, stores, log,
		promMetrics,
		services.NewCloudWatchObserver(metricsClient, cfg.ServiceName, log),
		services.NewCacheInvalidator(rdb, log),
	)
	jobStore := services.NewJobStore(rdb, cfg.BulkStorageDir, log)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	var workerDone <-chan struct{}
	if cfg.AsyncWorker {
		workerDone = services.NewImportWorker(jobStore, importService, log).Start(workerCtx)
	}

	importHandler := controllers.NewImportHandler(importService, jobStore, controllers.NewRequestValidator(), cfg.Import.Timeout, log)
	uploadLimiter := middleware.NewRateLimiter(rate.Every(time.Minute/time.Duration(max(cfg.UploadsPerMinute, 1))), max(cfg.UploadsPerMinute, 1), 10*time.Minute)

	// --- 4. HTTP server & middleware ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(logger.RequestLogger(log))
	r.Use(promMetrics.Middleware())
	r.Use(middleware.CloudWatchMetrics(metricsClient, cfg.ServiceName))
	r.Use(middleware.RequestTimeout(controllers.DefaultContextTimeout))

	// --- 5. Route registration ---
	routes.RegisterImportRoutes(r, importHandler, middleware.RateLimit(uploadLimiter))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": cfg.ServiceName, "store": cfg.StoreDriver})
	})
	r.GET("/metrics", gin.WrapH(promMetrics.Handler()))

	// --- 6. Graceful shutdown ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		log.Info("Catalog Service starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down Catalog Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	stopWorker()
	if cfg.AsyncWorker {
		select {
		case <-workerDone:
		case <-shutdownCtx.Done():
			log.Warn("Import worker did not stop in time")
		}
	}

	if err := rdb.Close(); err != nil {
		log.Error("Failed to close Redis", zap.Error(err))
	}
	log.Info("Catalog Service stopped gracefully")
}
