// internal/handler/health_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"uart-bridge/internal/config"
	"uart-bridge/internal/serial"
	"uart-bridge/internal/utils"
)

// HealthHandler serves service health endpoints
type HealthHandler struct {
	config    *config.Config
	port      serial.Port
	logger    *utils.ServiceLogger
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cfg *config.Config, port serial.Port, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		config:    cfg,
		port:      port,
		logger:    utils.NewServiceLogger(logger, "health-handler"),
		startedAt: time.Now(),
	}
}

// HealthCheck reports overall service health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	data := gin.H{
		"name":        h.config.App.Name,
		"version":     h.config.App.Version,
		"environment": h.config.App.Environment,
		"uptime":      time.Since(h.startedAt).String(),
		"serial_open": h.port.IsOpen(),
	}

	if !h.port.IsOpen() {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Serial port not open", nil)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Service healthy", data)
}
