// internal/bridge/loop.go
package bridge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"uart-bridge/internal/config"
	"uart-bridge/internal/serial"
)

// Loop is the periodic driver of the bridge. Each tick it heals any
// down transport, drains one bounded serial read and fans the bytes
// out to every registered client. Bytes the tick does not read stay
// buffered at the serial/OS level; nothing is queued across ticks.
type Loop struct {
	manager  *Manager
	registry *Registry
	port     serial.Port
	interval time.Duration
	buf      []byte
	logger   *zap.Logger
}

// NewLoop creates the bridge loop
func NewLoop(manager *Manager, registry *Registry, port serial.Port, cfg *config.BridgeConfig, logger *zap.Logger) *Loop {
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	bufSize := cfg.ReadBufferSize
	if bufSize <= 0 {
		bufSize = 512
	}

	return &Loop{
		manager:  manager,
		registry: registry,
		port:     port,
		interval: interval,
		buf:      make([]byte, bufSize),
		logger:   logger.With(zap.String("component", "bridge-loop")),
	}
}

// Run drives the loop until the context is cancelled
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("Bridge loop started",
		zap.Duration("interval", l.interval),
		zap.Int("read_buffer_size", len(l.buf)),
	)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Bridge loop stopped")
			return
		case <-ticker.C:
			l.Tick()
		}
	}
}

// Tick runs one heal/read/broadcast cycle. A serial read error is
// treated the same as an empty read: nothing available this tick.
func (l *Loop) Tick() {
	l.manager.EnsureUp()

	n, err := l.port.Read(l.buf)
	if err != nil || n <= 0 {
		return
	}

	l.registry.Broadcast(l.buf[:n])
}
