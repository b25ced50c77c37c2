// cmd/bridge/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"uart-bridge/internal/bridge"
	"uart-bridge/internal/config"
	"uart-bridge/internal/routes"
	"uart-bridge/internal/serial"
	"uart-bridge/internal/utils"
)

// Application represents the main application
type Application struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server

	// Bridge components
	port     serial.Port
	registry *bridge.Registry
	manager  *bridge.Manager
	loop     *bridge.Loop

	stopLoop context.CancelFunc
}

func main() {
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "uart-bridge")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	if err := app.initializeSerial(); err != nil {
		return nil, fmt.Errorf("failed to initialize serial port: %w", err)
	}

	app.initializeBridge()

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeSerial opens the UART device. This is the only
// initialization step whose failure is unrecoverable.
func (app *Application) initializeSerial() error {
	port := serial.NewUARTPort(&app.config.Serial, app.logger)
	if err := port.Open(); err != nil {
		return err
	}

	app.port = port
	app.logger.Info("Serial port initialized",
		zap.String("device", app.config.Serial.Device),
		zap.Int("baud_rate", app.config.Serial.BaudRate),
	)
	return nil
}

// initializeBridge wires the registry, transports, manager and loop
func (app *Application) initializeBridge() {
	app.registry = bridge.NewRegistry(app.logger)

	transports := []bridge.Transport{
		bridge.NewTCPTransport(app.registry, app.port, app.config.Bridge.ReadBufferSize, app.logger),
		bridge.NewWSTransport(app.registry, app.port, app.logger),
		bridge.NewMQTTTransport(app.registry, app.port, app.logger),
	}

	app.manager = bridge.NewManager(&app.config.Endpoints, transports, app.logger)
	app.loop = bridge.NewLoop(app.manager, app.registry, app.port, &app.config.Bridge, app.logger)

	app.logger.Info("Bridge initialized",
		zap.String("tcp", app.config.Endpoints.TCP.URL),
		zap.String("websocket", app.config.Endpoints.WebSocket.URL),
		zap.String("mqtt", app.config.Endpoints.MQTT.URL),
	)
}

// initializeServer sets up the HTTP API server and routes
func (app *Application) initializeServer() error {
	routerManager := routes.NewRouter(app.config, app.logger, app.manager, app.port)
	router := routerManager.SetupRouter()

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
	)
	return nil
}

// Start runs the bridge loop and HTTP server until a shutdown signal
func (app *Application) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	app.stopLoop = cancel

	go app.loop.Run(ctx)

	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.waitForShutdown()
	return nil
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "uart-bridge")
	serviceLogger.LogServiceStop("shutdown signal received")

	// Stop the tick first so nothing restarts a closing transport
	if app.stopLoop != nil {
		app.stopLoop()
	}

	app.manager.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	if app.port != nil {
		if err := app.port.Close(); err != nil {
			app.logger.Error("Serial port close error", zap.Error(err))
		}
	}

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}

	app.logger.Info("Application shutdown completed")
}
