package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/snapcal/backend/config"
	"github.com/snapcal/backend/internal/api"
	"github.com/snapcal/backend/internal/database"
	"github.com/snapcal/backend/internal/kvstore"
	"github.com/snapcal/backend/internal/middleware"
	"github.com/snapcal/backend/internal/router"
	"github.com/snapcal/backend/internal/server"
	"github.com/snapcal/backend/internal/service"
)

func main() {
	// A .env file is a development convenience; absence is fine
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize the persistence backend
	store, redisClient, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage backend: %v", err)
	}

	// Photo archival stays disabled unless an S3 bucket is configured
	s3Config, err := config.NewS3Config(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize S3: %v", err)
	}

	// Initialize services
	authService, err := service.NewAuthService(cfg.PairingKey, cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}
	storageService := service.NewStorageService(store)
	optimizer := service.NewStorageOptimizer(storageService, service.NewImageService(), service.OptimizerConfig{
		PressureThreshold:   cfg.PressureThreshold,
		CleanupWindowDays:   cfg.CleanupWindowDays,
		ImageStorageEnabled: cfg.ImageStorageEnabled,
		MaxImageBytes:       cfg.MaxImageBytes,
	})
	analysisService := service.NewAnalysisService(service.AnalysisConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.AnalysisBaseURL,
		Models:  cfg.AnalysisModels,
	})
	archiveService := service.NewArchiveService(s3Config)

	// Analysis throttling needs Redis; without it the analyze routes run open
	if redisClient == nil && cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
	}
	var analysisLimiter *middleware.RateLimiter
	if redisClient != nil && cfg.AnalysisRateLimit > 0 {
		analysisLimiter = middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Window:    time.Minute,
			Limit:     cfg.AnalysisRateLimit,
			KeyPrefix: "rate_limit:analysis",
		})
	}

	engine := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewSettingsHandler(storageService),
		api.NewEntriesHandler(storageService, optimizer, archiveService),
		api.NewStorageHandler(storageService, optimizer),
		api.NewProfileHandler(storageService),
		api.NewAnalyzeHandler(analysisService, storageService),
		authService,
		storageService,
		analysisLimiter,
		cfg.CORSOrigins,
	)

	// Create and start server
	srv := server.New(cfg, engine)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// openStore selects the persistence backend from configuration. When the
// backend is Redis the client is returned as well so rate limiting can share
// the connection.
func openStore(cfg *config.Config) (kvstore.Store, *redis.Client, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		log.Println("Using in-memory storage; data is lost on restart")
		return kvstore.NewMemoryStore(), nil, nil
	case config.BackendSQLite:
		db, err := database.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(db); err != nil {
			return nil, nil, err
		}
		return kvstore.NewGormStore(db), nil, nil
	case config.BackendPostgres:
		db, err := database.NewPostgres(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(db); err != nil {
			return nil, nil, err
		}
		return kvstore.NewGormStore(db), nil, nil
	case config.BackendRedis:
		client, err := database.NewRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		return kvstore.NewRedisStore(client, "snapcal:"), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
