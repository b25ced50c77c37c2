// internal/serial/port.go
package serial

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"uart-bridge/internal/config"
)

// Port represents the UART device being bridged.
//
// Read must not block the bridge tick: it returns 0 when nothing is
// buffered. Write may be called concurrently from every transport's
// client goroutines and must serialize internally.
type Port interface {
	Open() error
	Close() error
	IsOpen() bool
	Read(buf []byte) (int, error)
	Write(data []byte) (int, error)
}

// UARTPort implements Port over a physical or virtual serial device
type UARTPort struct {
	config *config.SerialConfig
	port   serial.Port
	logger *zap.Logger
	mutex  sync.Mutex
	isOpen bool
}

// NewUARTPort creates a new UART port for the configured device
func NewUARTPort(cfg *config.SerialConfig, logger *zap.Logger) *UARTPort {
	return &UARTPort{
		config: cfg,
		logger: logger.With(
			zap.String("component", "serial"),
			zap.String("device", cfg.Device),
		),
	}
}

// Open opens the serial device
func (up *UARTPort) Open() error {
	up.mutex.Lock()
	defer up.mutex.Unlock()

	if up.isOpen {
		return nil
	}

	up.logger.Info("Opening serial port",
		zap.Int("baud_rate", up.config.BaudRate),
		zap.Int("tx_pin", up.config.TXPin),
		zap.Int("rx_pin", up.config.RXPin),
	)

	mode := &serial.Mode{
		BaudRate: up.config.BaudRate,
		DataBits: up.config.DataBits,
		StopBits: stopBits(up.config.StopBits),
		Parity:   parity(up.config.Parity),
	}

	port, err := serial.Open(up.config.Device, mode)
	if err != nil {
		up.logger.Error("Failed to open serial port", zap.Error(err))
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	// A short read timeout makes the per-tick read effectively
	// non-blocking; unread bytes stay buffered at the OS level.
	timeout := up.config.Timeout
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	up.port = port
	up.isOpen = true

	up.logger.Info("Serial port opened successfully")
	return nil
}

// Close closes the serial device
func (up *UARTPort) Close() error {
	up.mutex.Lock()
	defer up.mutex.Unlock()

	if !up.isOpen || up.port == nil {
		return nil
	}

	if err := up.port.Close(); err != nil {
		up.logger.Error("Failed to close serial port", zap.Error(err))
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	up.port = nil
	up.isOpen = false

	up.logger.Info("Serial port closed")
	return nil
}

// IsOpen returns whether the device is open
func (up *UARTPort) IsOpen() bool {
	up.mutex.Lock()
	defer up.mutex.Unlock()
	return up.isOpen && up.port != nil
}

// Read performs one bounded read. A zero count means nothing was
// available within the read timeout.
func (up *UARTPort) Read(buf []byte) (int, error) {
	up.mutex.Lock()
	defer up.mutex.Unlock()

	if !up.isOpen || up.port == nil {
		return 0, fmt.Errorf("serial port not open")
	}

	n, err := up.port.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("failed to read from serial port: %w", err)
	}

	return n, nil
}

// Write writes data to the serial device, blocking until accepted
func (up *UARTPort) Write(data []byte) (int, error) {
	up.mutex.Lock()
	defer up.mutex.Unlock()

	if !up.isOpen || up.port == nil {
		return 0, fmt.Errorf("serial port not open")
	}

	n, err := up.port.Write(data)
	if err != nil {
		up.logger.Error("Serial write failed", zap.Error(err))
		return n, fmt.Errorf("failed to write to serial port: %w", err)
	}

	if n != len(data) {
		return n, fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	up.logger.Debug("Serial write completed", zap.Int("bytes", n))
	return n, nil
}

// stopBits maps the configured stop bit count to the driver's type
func stopBits(n int) serial.StopBits {
	switch n {
	case 2:
		return serial.TwoStopBits
	default:
		return serial.OneStopBit
	}
}

// parity maps the configured parity name to the driver's type
func parity(name string) serial.Parity {
	switch name {
	case "odd":
		return serial.OddParity
	case "even":
		return serial.EvenParity
	default:
		return serial.NoParity
	}
}
