// Package api wires the middleware chain and mounts all controllers under
// the versioned route group.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/lumapp/marketplace/api/health"
	"github.com/lumapp/marketplace/api/middleware"
	"github.com/lumapp/marketplace/api/order"
	"github.com/lumapp/marketplace/api/store"
	"github.com/lumapp/marketplace/api/user"
	"github.com/lumapp/marketplace/config"
)

// Router owns the gin engine and the mounted controllers.
type Router struct {
	engine           *gin.Engine
	config           *config.Config
	healthController *health.Controller
	userController   *user.Controller
	storeController  *store.Controller
	orderController  *order.Controller
}

func NewRouter(
	cfg *config.Config,
	healthController *health.Controller,
	userController *user.Controller,
	storeController *store.Controller,
	orderController *order.Controller,
) *Router {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Request id first so every later middleware can log it.
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.LoggingMiddleware())
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware(&cfg.Server.RateLimit))

	return &Router{
		engine:           engine,
		config:           cfg,
		healthController: healthController,
		userController:   userController,
		storeController:  storeController,
		orderController:  orderController,
	}
}

// SetupRoutes mounts every controller.
func (r *Router) SetupRoutes() {
	apiGroup := r.engine.Group("/api/v1")
	{
		r.healthController.RegisterRoutes(apiGroup)
		r.userController.RegisterRoutes(apiGroup)
		r.storeController.RegisterRoutes(apiGroup)
		r.orderController.RegisterRoutes(apiGroup)
	}

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/api/v1/health",
		})
	})
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
