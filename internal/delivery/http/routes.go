package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voltlens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check and metrics endpoints
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/search", handler.SearchProducts)

		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.GET("/:articleNumber", handler.GetProduct)
			products.GET("/:articleNumber/pricing", handler.GetProductPricing)
			products.POST("/compare", handler.CompareProducts)
		}

		v1.POST("/components", handler.CategorizeComponents)
		v1.POST("/storage-recommendation", handler.StorageRecommendation)
	}

	return router
}
