package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"books-crud-api/internal/shared/middleware"
	"books-crud-api/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
	)

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c))
		setupBookRoutes(api, c)
	}

	return router
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(api *gin.RouterGroup, c *container.Container) {
	books := api.Group("/books")
	{
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/:id", c.BookHandler.GetBook)
		books.POST("", c.BookHandler.CreateBook)
		books.PUT("/:id", c.BookHandler.UpdateBook)
		books.DELETE("/:id", c.BookHandler.DeleteBook)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"storage":   appCtx.StorageDriver(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		statusCode := http.StatusOK
		if appCtx.DB != nil {
			dbStatus := "ok"
			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = "unavailable"
				health["status"] = "degraded"
				statusCode = http.StatusServiceUnavailable
			} else if stats, err := appCtx.DB.Stats(); err == nil {
				health["pool"] = stats
			}
			health["database"] = dbStatus
		}

		cacheStatus := "ok"
		if err := appCtx.Cache.Ping(ctx); err != nil {
			cacheStatus = "unavailable"
		}
		health["cache"] = cacheStatus

		c.JSON(statusCode, health)
	}
}
