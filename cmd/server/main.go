package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/voltlens/backend/config"
	httpDelivery "github.com/voltlens/backend/internal/delivery/http"
	"github.com/voltlens/backend/internal/domain"
	"github.com/voltlens/backend/internal/infrastructure/cache"
	"github.com/voltlens/backend/internal/infrastructure/openai"
	"github.com/voltlens/backend/internal/infrastructure/platform"
	"github.com/voltlens/backend/internal/infrastructure/qdrant"
	"github.com/voltlens/backend/internal/logger"
	"github.com/voltlens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Server.Environment == "development")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting voltlens backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache_type", cfg.Cache.Type),
	)

	// Initialize infrastructure dependencies
	var cacheRepo domain.CacheRepository
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisCache.Close()
		cacheRepo = redisCache
	default:
		cacheRepo = cache.NewMemoryCache()
	}

	catalogRepo := qdrant.NewClient(
		cfg.Qdrant.URL,
		cfg.Qdrant.Collection,
		cfg.Qdrant.APIKey,
		cfg.RateLimit.Qdrant,
		zapLogger,
	)

	embedder := openai.NewEmbedder(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.BaseURL,
		cfg.OpenAI.EmbeddingModel,
		cfg.OpenAI.MaxInputChars,
		cfg.RateLimit.OpenAI,
		zapLogger,
	)

	pricingClient := platform.NewClient(
		cfg.Platform.BaseURL,
		cfg.Platform.APIKey,
		cfg.RateLimit.Platform,
		zapLogger,
	)

	// Initialize usecase layer
	resolver := usecase.NewResolver(
		catalogRepo,
		embedder,
		usecase.DefaultVocabulary(),
		usecase.ResolverConfig{
			DefaultLimit:     cfg.Search.DefaultLimit,
			MinSemanticScore: cfg.Search.MinSemanticScore,
			ScanPageSize:     cfg.Search.ScanPageSize,
		},
		zapLogger,
	)

	categorizer := usecase.NewCategorizer(catalogRepo, cfg.Search.ScanPageSize, zapLogger)

	catalogService := usecase.NewCatalogService(
		catalogRepo,
		pricingClient,
		cacheRepo,
		resolver,
		usecase.CatalogServiceConfig{
			CacheTTL:     cfg.Cache.TTL,
			ScanPageSize: cfg.Search.ScanPageSize,
		},
		zapLogger,
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(resolver, categorizer, catalogService, zapLogger)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zapLogger.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("failed to start server", zap.Error(err))
	}
}
