// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pos-suite/backend-go/internal/api/handlers"
	"github.com/pos-suite/backend-go/internal/api/middleware"
	"github.com/pos-suite/backend-go/internal/service"
)

// NewRouter assembles the dashboard-facing API.
func NewRouter(svc *service.ReconcileService, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Employee-Id", "X-Branch-Id", "X-Role"},
		ExposeHeaders:    []string{"Content-Length", "X-Data-Stale"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	stockHandler := handlers.NewStockHandler(svc)
	stockGroup := apiGroup.Group("/stock")
	{
		stockGroup.GET("/table", stockHandler.GetTable)
		stockGroup.GET("/low", stockHandler.GetLowStock)
		stockGroup.GET("/movement", stockHandler.GetMovement)
	}

	salesHandler := handlers.NewSalesHandler(svc)
	apiGroup.GET("/sales/sold", salesHandler.GetSold)

	thresholdHandler := handlers.NewThresholdHandler(svc)
	apiGroup.GET("/threshold", thresholdHandler.Get)
	apiGroup.PUT("/threshold", thresholdHandler.Put)

	streamHandler := handlers.NewStreamHandler(svc)
	apiGroup.GET("/stream/ticks", streamHandler.Ticks)

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
