// internal/handler/config_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"uart-bridge/internal/bridge"
	"uart-bridge/internal/config"
	"uart-bridge/internal/utils"
)

// ConfigHandler serves the bridge configuration API
type ConfigHandler struct {
	config  *config.Config
	manager *bridge.Manager
	logger  *utils.ServiceLogger
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config, manager *bridge.Manager, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{
		config:  cfg,
		manager: manager,
		logger:  utils.NewServiceLogger(logger, "config-handler"),
	}
}

// BridgeStatus is the JSON document returned by GET /api/config/get.
// The key names and shape are fixed: the web UI consumes them.
type BridgeStatus struct {
	TCP  bridge.EndpointView `json:"tcp"`
	WS   bridge.EndpointView `json:"ws"`
	MQTT bridge.EndpointView `json:"mqtt"`
	RX   int                 `json:"rx"`
	TX   int                 `json:"tx"`
	Baud int                 `json:"baud"`
}

// GetConfig returns the current endpoint and serial configuration
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	views := h.manager.Snapshot()

	c.JSON(http.StatusOK, BridgeStatus{
		TCP:  views[bridge.KindTCP],
		WS:   views[bridge.KindWebSocket],
		MQTT: views[bridge.KindMQTT],
		RX:   h.config.Serial.RXPin,
		TX:   h.config.Serial.TXPin,
		Baud: h.config.Serial.BaudRate,
	})
}

// Hi is a plain-text liveness probe kept for UI compatibility
func (h *ConfigHandler) Hi(c *gin.Context) {
	c.String(http.StatusOK, "hi\n")
}
