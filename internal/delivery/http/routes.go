package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dealdesk/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))
	{
		groups := v1.Group("/product-groups")
		{
			groups.POST("", handler.GroupProducts)
			groups.POST("/confirm", handler.ConfirmSelection)
		}

		v1.GET("/deals/:dealId/product-groups", handler.GroupDeal)
		v1.POST("/similarity", handler.Compare)
	}

	return router
}
