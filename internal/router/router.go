package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/snapcal/backend/internal/api"
	"github.com/snapcal/backend/internal/middleware"
	"github.com/snapcal/backend/internal/service"
)

// SetupRouter configures the application routes. The analysis rate limiter is
// optional; without one the analyze routes run unthrottled.
func SetupRouter(
	authHandler *api.AuthHandler,
	settingsHandler *api.SettingsHandler,
	entriesHandler *api.EntriesHandler,
	storageHandler *api.StorageHandler,
	profileHandler *api.ProfileHandler,
	analyzeHandler *api.AnalyzeHandler,
	authService service.IAuthService,
	storageService service.IStorageService,
	analysisLimiter *middleware.RateLimiter,
	corsOrigins []string,
) *gin.Engine {
	router := gin.Default()

	router.Use(corsMiddleware(corsOrigins))
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		info := storageService.GetStorageInfo(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"status":             "ok",
			"storage_percentage": info.Percentage,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Pairing is the only route reachable without a token
	authHandler.RegisterRoutes(v1)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		settingsHandler.RegisterRoutes(protected)
		entriesHandler.RegisterRoutes(protected)
		storageHandler.RegisterRoutes(protected)
		profileHandler.RegisterRoutes(protected)

		analyze := protected.Group("")
		if analysisLimiter != nil {
			analyze.Use(analysisLimiter.RateLimitMiddleware())
		}
		analyzeHandler.RegisterRoutes(analyze)
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
