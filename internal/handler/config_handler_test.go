// internal/handler/config_handler_test.go
package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"uart-bridge/internal/bridge"
	"uart-bridge/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Endpoints: config.EndpointsConfig{
			TCP:       config.EndpointConfig{URL: "tcp://0.0.0.0:4001", Enable: true},
			WebSocket: config.EndpointConfig{URL: "ws://0.0.0.0:4002", Enable: true},
			MQTT:      config.EndpointConfig{URL: "mqtt://broker.hivemq.com:1883?tx=b/tx&rx=b/rx", Enable: false},
		},
		Serial: config.SerialConfig{
			TXPin:    5,
			RXPin:    4,
			BaudRate: 115200,
		},
		App: config.AppConfig{
			Name:        "uart-bridge",
			Version:     "1.0.0",
			Environment: "development",
		},
	}
}

func setupConfigRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := bridge.NewManager(&cfg.Endpoints, nil, zap.NewNop())
	h := NewConfigHandler(cfg, manager, zap.NewNop())

	r := gin.New()
	r.GET("/api/config/get", h.GetConfig)
	r.GET("/api/hi", h.Hi)
	return r
}

func TestGetConfigShape(t *testing.T) {
	r := setupConfigRouter(t, testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/config/get", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "application/json")
	require.JSONEq(t, `{
		"tcp":  {"url": "tcp://0.0.0.0:4001", "enable": true},
		"ws":   {"url": "ws://0.0.0.0:4002", "enable": true},
		"mqtt": {"url": "mqtt://broker.hivemq.com:1883?tx=b/tx&rx=b/rx", "enable": false},
		"rx":   4,
		"tx":   5,
		"baud": 115200
	}`, w.Body.String())
}

func TestHi(t *testing.T) {
	r := setupConfigRouter(t, testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/hi", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "hi\n", w.Body.String())
}
