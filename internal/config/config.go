// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Endpoints EndpointsConfig `mapstructure:"endpoints"`
	Serial    SerialConfig    `mapstructure:"serial"`
	Bridge    BridgeConfig    `mapstructure:"bridge"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	App       AppConfig       `mapstructure:"app"`
}

// ServerConfig represents the HTTP API server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	WebRoot      string        `mapstructure:"web_root"`
}

// EndpointsConfig holds the three bridged transport endpoints
type EndpointsConfig struct {
	TCP       EndpointConfig `mapstructure:"tcp"`
	WebSocket EndpointConfig `mapstructure:"websocket"`
	MQTT      EndpointConfig `mapstructure:"mqtt"`
}

// EndpointConfig represents a single transport endpoint
type EndpointConfig struct {
	URL    string `mapstructure:"url"`
	Enable bool   `mapstructure:"enable"`
}

// SerialConfig represents the UART device configuration
type SerialConfig struct {
	Device   string        `mapstructure:"device"`
	TXPin    int           `mapstructure:"tx_pin"`
	RXPin    int           `mapstructure:"rx_pin"`
	BaudRate int           `mapstructure:"baud_rate"`
	DataBits int           `mapstructure:"data_bits"`
	StopBits int           `mapstructure:"stop_bits"`
	Parity   string        `mapstructure:"parity"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// BridgeConfig represents the bridge loop configuration
type BridgeConfig struct {
	TickInterval   time.Duration `mapstructure:"tick_interval"`
	ReadBufferSize int           `mapstructure:"read_buffer_size"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// Load loads configuration from file and environment variables.
// A missing config file is not an error; the bridge runs on defaults.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variable support
	viper.SetEnvPrefix("UART_BRIDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.web_root", "./web_root")

	// Endpoint defaults
	viper.SetDefault("endpoints.tcp.url", "tcp://0.0.0.0:4001")
	viper.SetDefault("endpoints.tcp.enable", true)
	viper.SetDefault("endpoints.websocket.url", "ws://0.0.0.0:4002")
	viper.SetDefault("endpoints.websocket.enable", true)
	viper.SetDefault("endpoints.mqtt.url", "mqtt://broker.hivemq.com:1883?tx=b/tx&rx=b/rx")
	viper.SetDefault("endpoints.mqtt.enable", true)

	// Serial defaults
	viper.SetDefault("serial.device", "/dev/ttyUSB0")
	viper.SetDefault("serial.tx_pin", 5)
	viper.SetDefault("serial.rx_pin", 4)
	viper.SetDefault("serial.baud_rate", 115200)
	viper.SetDefault("serial.data_bits", 8)
	viper.SetDefault("serial.stop_bits", 1)
	viper.SetDefault("serial.parity", "none")
	viper.SetDefault("serial.timeout", "1ms")

	// Bridge defaults
	viper.SetDefault("bridge.tick_interval", "20ms")
	viper.SetDefault("bridge.read_buffer_size", 512)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
	viper.SetDefault("logging.max_size", 100)
	viper.SetDefault("logging.max_backups", 3)
	viper.SetDefault("logging.max_age", 28)
	viper.SetDefault("logging.compress", true)

	// App defaults
	viper.SetDefault("app.name", "uart-bridge")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if config.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if config.Serial.Device == "" {
		return fmt.Errorf("serial.device is required")
	}
	if config.Serial.BaudRate <= 0 {
		return fmt.Errorf("serial.baud_rate must be positive")
	}
	if config.Bridge.TickInterval <= 0 {
		return fmt.Errorf("bridge.tick_interval must be positive")
	}
	if config.Bridge.ReadBufferSize <= 0 {
		return fmt.Errorf("bridge.read_buffer_size must be positive")
	}

	for name, ep := range map[string]EndpointConfig{
		"endpoints.tcp":       config.Endpoints.TCP,
		"endpoints.websocket": config.Endpoints.WebSocket,
		"endpoints.mqtt":      config.Endpoints.MQTT,
	} {
		if ep.Enable && ep.URL == "" {
			return fmt.Errorf("%s.url is required when enabled", name)
		}
	}

	// Validate environment
	validEnvs := []string{"development", "staging", "production", "test"}
	isValidEnv := false
	for _, env := range validEnvs {
		if config.App.Environment == env {
			isValidEnv = true
			break
		}
	}
	if !isValidEnv {
		return fmt.Errorf("app.environment must be one of: %v", validEnvs)
	}

	// Validate logging level
	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	isValidLevel := false
	for _, level := range validLevels {
		if config.Logging.Level == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	return nil
}

// GetServerAddr returns the HTTP API server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
