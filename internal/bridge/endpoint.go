// internal/bridge/endpoint.go
package bridge

// Kind identifies a bridged transport
type Kind int

const (
	KindTCP Kind = iota
	KindWebSocket
	KindMQTT
)

// String returns the transport name
func (k Kind) String() string {
	switch k {
	case KindTCP:
		return "tcp"
	case KindWebSocket:
		return "websocket"
	case KindMQTT:
		return "mqtt"
	default:
		return "unknown"
	}
}

// Phase is the lifecycle state of one endpoint
type Phase int

const (
	PhaseDown Phase = iota
	PhaseStarting
	PhaseUp
)

// Handle is a running listener or broker session
type Handle interface {
	Close() error
}

// Endpoint is one transport's record: address, enable flag and the
// handle of its running listener or session. The handle is non-nil
// only while the phase is Up; the close notification clears it.
// Owned by the Manager; mutated only under its lock.
type Endpoint struct {
	URL     string
	Enabled bool

	phase  Phase
	handle Handle
}

// EndpointView is the read-only endpoint snapshot served by the
// configuration API
type EndpointView struct {
	URL    string `json:"url"`
	Enable bool   `json:"enable"`
}
