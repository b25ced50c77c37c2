// internal/bridge/manager.go
package bridge

import (
	"sync"

	"go.uber.org/zap"

	"uart-bridge/internal/config"
)

// Transport starts one listener or broker session for its endpoint.
// The returned handle stays live until the transport drops; the down
// callback fires once when the listener or primary session dies.
type Transport interface {
	Kind() Kind
	Start(url string, down func()) (Handle, error)
}

// Manager owns the three endpoint records and keeps every enabled
// transport running. EnsureUp is idempotent: a transport that is
// already up (or starting) is left alone, a failed start leaves the
// endpoint down and is retried on the next tick. No start error is
// fatal.
type Manager struct {
	mu         sync.Mutex
	endpoints  map[Kind]*Endpoint
	transports map[Kind]Transport
	logger     *zap.Logger
}

// NewManager creates a manager for the configured endpoints
func NewManager(cfg *config.EndpointsConfig, transports []Transport, logger *zap.Logger) *Manager {
	m := &Manager{
		endpoints: map[Kind]*Endpoint{
			KindTCP:       {URL: cfg.TCP.URL, Enabled: cfg.TCP.Enable},
			KindWebSocket: {URL: cfg.WebSocket.URL, Enabled: cfg.WebSocket.Enable},
			KindMQTT:      {URL: cfg.MQTT.URL, Enabled: cfg.MQTT.Enable},
		},
		transports: make(map[Kind]Transport, len(transports)),
		logger:     logger.With(zap.String("component", "transport-manager")),
	}

	for _, t := range transports {
		m.transports[t.Kind()] = t
	}

	return m
}

// EnsureUp issues exactly one start attempt for each enabled endpoint
// that is currently down
func (m *Manager) EnsureUp() {
	for _, kind := range []Kind{KindTCP, KindWebSocket, KindMQTT} {
		m.ensureEndpoint(kind)
	}
}

// ensureEndpoint starts one endpoint if it is enabled and down
func (m *Manager) ensureEndpoint(kind Kind) {
	transport, ok := m.transports[kind]
	if !ok {
		return
	}

	m.mu.Lock()
	ep := m.endpoints[kind]
	if !ep.Enabled || ep.phase != PhaseDown {
		m.mu.Unlock()
		return
	}
	ep.phase = PhaseStarting
	url := ep.URL
	m.mu.Unlock()

	// Start outside the lock: the transport's down callback may fire
	// immediately and needs the lock itself
	handle, err := transport.Start(url, func() { m.markDown(kind) })

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		ep.phase = PhaseDown
		m.logger.Warn("Transport start failed; will retry",
			zap.String("transport", kind.String()),
			zap.String("url", url),
			zap.Error(err),
		)
		return
	}

	if ep.phase != PhaseStarting {
		// Went down while starting; discard the handle and retry later
		handle.Close()
		return
	}

	ep.phase = PhaseUp
	ep.handle = handle
}

// markDown records that an endpoint's listener or session died. The
// next EnsureUp restarts it.
func (m *Manager) markDown(kind Kind) {
	m.mu.Lock()
	ep := m.endpoints[kind]
	wasUp := ep.phase != PhaseDown
	ep.phase = PhaseDown
	ep.handle = nil
	m.mu.Unlock()

	if wasUp {
		m.logger.Info("Transport down", zap.String("transport", kind.String()))
	}
}

// Phase returns the current lifecycle phase of an endpoint
func (m *Manager) Phase(kind Kind) Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endpoints[kind].phase
}

// handleFor returns the live handle of an endpoint, or nil
func (m *Manager) handleFor(kind Kind) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endpoints[kind].handle
}

// Snapshot returns the endpoint views served by the configuration API
func (m *Manager) Snapshot() map[Kind]EndpointView {
	m.mu.Lock()
	defer m.mu.Unlock()

	views := make(map[Kind]EndpointView, len(m.endpoints))
	for kind, ep := range m.endpoints {
		views[kind] = EndpointView{URL: ep.URL, Enable: ep.Enabled}
	}
	return views
}

// Shutdown closes every live handle and leaves all endpoints down
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for kind, ep := range m.endpoints {
		if ep.handle != nil {
			if err := ep.handle.Close(); err != nil {
				m.logger.Error("Transport close error",
					zap.String("transport", kind.String()),
					zap.Error(err),
				)
			}
		}
		ep.phase = PhaseDown
		ep.handle = nil
	}

	m.logger.Info("All transports stopped")
}
