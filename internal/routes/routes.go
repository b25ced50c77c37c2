// internal/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"uart-bridge/internal/bridge"
	"uart-bridge/internal/config"
	"uart-bridge/internal/handler"
	"uart-bridge/internal/middleware"
	"uart-bridge/internal/serial"
	"uart-bridge/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config  *config.Config
	logger  *zap.Logger
	manager *bridge.Manager
	port    serial.Port
}

// NewRouter creates a new router instance
func NewRouter(config *config.Config, logger *zap.Logger, manager *bridge.Manager, port serial.Port) *Router {
	return &Router{
		config:  config,
		logger:  logger,
		manager: manager,
		port:    port,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	// Set Gin mode
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware())

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	configHandler := handler.NewConfigHandler(r.config, r.manager, r.logger)
	healthHandler := handler.NewHealthHandler(r.config, r.port, r.logger)

	router.GET("/health", healthHandler.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/hi", configHandler.Hi)
		api.GET("/config/get", configHandler.GetConfig)
	}

	// Everything else is the static web UI
	router.NoRoute(gin.WrapH(http.FileServer(http.Dir(r.config.Server.WebRoot))))

	r.logger.Info("All routes configured successfully")
}
