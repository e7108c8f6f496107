// Package router assembles the Gin engine from the application's modules.
package router

import (
	"net/http"

	apphttp "carbot_backend/internal/http"
	"carbot_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// New builds the HTTP engine: global middleware, health endpoint, and every
// module's routes under /api/v1.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(corsMiddleware(app))

	engine.GET("/api/health", func(c *gin.Context) {
		status := http.StatusOK
		payload := gin.H{"status": "ok"}
		if app.Health != nil {
			if err := app.Health.Ping(c.Request.Context()); err != nil {
				status = http.StatusServiceUnavailable
				payload = gin.H{"status": "degraded", "error": err.Error()}
			}
		}
		c.JSON(status, payload)
	})

	limiter := httpkit.NewIPRateLimiter(
		rate.Limit(app.Config.GetRateLimitPerMinute()/60.0),
		app.Config.GetRateLimitBurst(),
		app.Logger,
	)

	routerCtx := &apphttp.RouterContext{
		Engine:  engine,
		V1:      engine.Group("/api/v1"),
		Limiter: limiter,
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(routerCtx)
		app.Logger.Info("module routes registered", "module", module.Name())
	}

	return engine
}

func corsMiddleware(app *apphttp.App) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-Webhook-Token"}

	if app.Config.GetCORSAllowAll() {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = app.Config.GetCORSOrigins()
		corsConfig.AllowCredentials = app.Config.GetCORSAllowCreds()
	}

	return cors.New(corsConfig)
}
