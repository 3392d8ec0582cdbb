package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/config"
	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/contact"
	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/exports"
	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/inventory"
	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/mapview"
	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/siteimages"
	"hollowbrook-farm/farm-portal/farm-portal-backend/pkg/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		if cfg.Database.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		}
		if cfg.Database.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		}
		if cfg.Database.MaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.Database.MaxLifetime)
		}
		defer sqlDB.Close()
	}

	if err := pastures.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate pasture tables", zap.Error(err))
	}
	if err := inventory.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate inventory tables", zap.Error(err))
	}
	if err := siteimages.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate site-image tables", zap.Error(err))
	}

	// AWS clients for the export bucket and the contact mailer.
	awsConf, awsErr := loadAWSConfig(cfg.AWS)

	var objectStore storage.ObjectStore
	if cfg.AWS.S3Bucket != "" {
		if awsErr != nil {
			logger.Fatal("Failed to load AWS config", zap.Error(awsErr))
		}
		objectStore = storage.NewS3Store(s3.NewFromConfig(awsConf), cfg.AWS.S3Bucket)
		logger.Info("Export uploads enabled", zap.String("bucket", cfg.AWS.S3Bucket))
	}

	// Module wiring
	pastureRepo := pastures.NewGormRepository(db)
	pastureService := pastures.NewService(pastureRepo, logger)
	pastureHandler := pastures.NewHandler(pastureService, logger)

	tileSources := make([]mapview.TileSource, 0, len(cfg.Map.TileSources))
	for _, src := range cfg.Map.TileSources {
		tileSources = append(tileSources, mapview.TileSource{
			Name:        src.Name,
			URLTemplate: src.URLTemplate,
			Attribution: src.Attribution,
			MaxZoom:     src.MaxZoom,
		})
	}
	mapService := mapview.NewService(pastureService, logger)
	mapHandler := mapview.NewHandler(mapService, tileSources, logger)

	exportService := exports.NewService(pastureService, objectStore, logger)
	exportHandler := exports.NewHandler(exportService, logger)

	inventoryService := inventory.NewService(inventory.NewGormRepository(db), logger)
	inventoryHandler := inventory.NewHandler(inventoryService, logger)

	siteImageHandler := siteimages.NewHandler(siteimages.NewGormStore(db), logger)

	var contactHandler *contact.Handler
	if cfg.AWS.SESSender != "" && cfg.AWS.SESRecipient != "" {
		if awsErr != nil {
			logger.Fatal("Failed to load AWS config", zap.Error(awsErr))
		}
		mailer := contact.NewSESMailer(sesv2.NewFromConfig(awsConf), cfg.AWS.SESSender)
		contactHandler = contact.NewHandler(contact.NewService(mailer, cfg.AWS.SESRecipient, logger), logger)
	} else {
		logger.Warn("Contact form disabled, SES sender or recipient not configured")
	}

	// Setup Router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	api := router.Group("/api/v1")
	{
		pastureHandler.RegisterRoutes(api)
		mapHandler.RegisterRoutes(api)
		exportHandler.RegisterRoutes(api)
		inventoryHandler.RegisterRoutes(api)
		siteImageHandler.RegisterRoutes(api)
		if contactHandler != nil {
			contactHandler.RegisterRoutes(api)
		}
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Scheduled tile prefetch
	var scheduler *cron.Cron
	if cfg.Map.Prefetch.Enabled && len(tileSources) > 0 {
		prefetcher := mapview.NewPrefetcher(pastureService, tileSources[0],
			cfg.Map.Prefetch.Zooms, cfg.Map.Prefetch.MaxTiles, logger)
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.Map.Prefetch.Schedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if err := prefetcher.Run(ctx); err != nil {
				logger.Error("Tile prefetch run failed", zap.Error(err))
			}
		}); err != nil {
			logger.Fatal("Invalid prefetch schedule", zap.Error(err))
		}
		scheduler.Start()
		logger.Info("Tile prefetch scheduled", zap.String("schedule", cfg.Map.Prefetch.Schedule))
	}

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen: %s\n", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func newLogger(level string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

// loadAWSConfig builds the shared SDK config. Static credentials from config
// win over the default chain when provided.
func loadAWSConfig(cfg config.AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	return awsconfig.LoadDefaultConfig(context.Background(), opts...)
}
