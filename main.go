package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-service/common/logger"
	"catalog-service/common/middleware"
	"catalog-service/controllers"
	"catalog-service/database"
	"catalog-service/models"
	awspkg "catalog-service/pkg/aws"
	"catalog-service/repository"
	"catalog-service/routes"
	"catalog-service/services"
	"catalog-service/uploads"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "catalog-service"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := logger.Initialize(os.Getenv("APP_ENV")); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	cfg, err := LoadConfig(ctx)
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	var awsCfg sdkaws.Config
	if cfg.NeedsAWS() {
		awsCfg, err = awspkg.LoadAWSConfig(ctx, cfg.AWS)
		if err != nil {
			zap.L().Fatal("Failed to load AWS config", zap.Error(err))
		}
	}

	setupLogger(ctx, cfg, awsCfg)
	defer func() { _ = zap.L().Sync() }()

	// --- Storage ---

	repo, closeRepo, err := openProductRepo(ctx, cfg, awsCfg)
	if err != nil {
		zap.L().Fatal("Failed to open product store", zap.Error(err))
	}
	defer closeRepo()
	if err := repo.EnsureIndexes(ctx); err != nil {
		zap.L().Warn("Failed to ensure product indexes", zap.Error(err))
	}

	rdb, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		zap.L().Fatal("Failed to configure Redis", zap.Error(err))
	}
	defer rdb.Close()

	uploadStore, err := openUploadStore(cfg, awsCfg)
	if err != nil {
		zap.L().Fatal("Failed to open upload store", zap.Error(err))
	}

	// --- Services ---

	productService := services.NewProductService(repo, uploadStore)

	var metricsClient *awspkg.MetricsClient
	if cfg.CloudWatchEnabled {
		metricsClient = awspkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, true)
		productService.WithMetrics(metricsClient)
	}
	if cfg.ImportSNSTopicARN != "" {
		productService.WithEvents(awspkg.NewSNSClient(awsCfg), cfg.ImportSNSTopicARN)
	}
	if cfg.S3Bucket != "" {
		productService.WithImages(awspkg.NewImagePresigner(
			awspkg.NewS3Client(awsCfg), cfg.S3Bucket, cfg.S3Prefix, cfg.AWS.Endpoint, cfg.CloudFrontDomain,
		))
	}

	productController := controllers.NewProductController(productService, rdb, controllers.Config{})
	jobQueue := services.NewImportJobQueue(rdb)
	if cfg.ImportSQSQueueURL != "" {
		jobQueue.WithDispatcher(services.NewSQSDispatcher(awspkg.NewSQSQueue(awsCfg, cfg.ImportSQSQueueURL)))
	}
	bulkHandler := controllers.NewBulkImportHandler(productService, jobQueue, productController.Cache())
	imageHandler := controllers.NewPresignedURLHandler(productService)

	services.StartBulkImportWorker(ctx, jobQueue, productService, func(ctx context.Context, result *models.BulkImportResult) {
		if result.InsertedCount == 0 {
			return
		}
		if err := productController.Cache().Invalidate(ctx); err != nil {
			zap.L().Warn("Failed to invalidate cache after async import", zap.Error(err))
		}
	})

	// --- HTTP ---

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(zap.L()),
		middleware.SecurityHeaders(),
		middleware.CORSMiddleware(cfg.AllowedOrigins),
		middleware.PrometheusMiddleware(),
		middleware.MetricsMiddleware(metricsClient, serviceName),
	)

	routes.RegisterRoutes(r, routes.Handlers{
		Products: productController,
		Bulk:     bulkHandler,
		Images:   imageHandler,
	}, routes.Options{
		AuthEnabled:     cfg.AuthEnabled,
		JWTSecret:       []byte(cfg.JWTSecret),
		UploadPerMinute: cfg.UploadPerMinute,
		UploadBurst:     cfg.UploadBurst,
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/metrics", middleware.MetricsHandler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Catalog service starting",
			zap.String("port", cfg.Port),
			zap.String("store", cfg.StoreBackend),
			zap.String("uploads", cfg.UploadBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down catalog service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Server forced to shutdown", zap.Error(err))
	}
	zap.L().Info("Catalog service stopped gracefully")
}

// setupLogger re-installs the global logger for the configured environment,
// tee'd to CloudWatch Logs when enabled.
func setupLogger(ctx context.Context, cfg *Config, awsCfg sdkaws.Config) {
	if !cfg.CloudWatchEnabled {
		if _, err := logger.Initialize(cfg.Env); err != nil {
			zap.L().Warn("Failed to reinitialize logger", zap.Error(err))
		}
		return
	}

	cw, err := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, serviceName)
	if err != nil {
		zap.L().Warn("CloudWatch Logs unavailable, logging locally", zap.Error(err))
		_, _ = logger.Initialize(cfg.Env)
		return
	}
	if _, err := logger.InitializeWithWriter(cfg.Env, cw); err != nil {
		zap.L().Warn("Failed to reinitialize logger", zap.Error(err))
	}
}

func openProductRepo(ctx context.Context, cfg *Config, awsCfg sdkaws.Config) (repository.ProductRepo, func(), error) {
	switch cfg.StoreBackend {
	case "dynamodb":
		client := dynamodb.NewFromConfig(awsCfg)
		return repository.NewDynamoAdapter(client, cfg.DDBTableProducts), func() {}, nil
	case "mongo":
		client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := database.CloseMongo(client); err != nil {
				zap.L().Error("Failed to close MongoDB", zap.Error(err))
			}
		}
		return repository.NewMongoProductRepository(db), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func openUploadStore(cfg *Config, awsCfg sdkaws.Config) (uploads.Store, error) {
	switch cfg.UploadBackend {
	case "s3":
		return uploads.NewS3Store(awspkg.NewS3Client(awsCfg), cfg.S3Bucket, cfg.S3Prefix+"bulk_imports/"), nil
	case "disk":
		store, err := uploads.NewDiskStore(cfg.BulkStorageDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.UploadBackend)
	}
}
