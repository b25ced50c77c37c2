// internal/bridge/topics.go
package bridge

import (
	"fmt"
	"net/url"
	"strings"
)

// Default topic names used when the MQTT address carries no overrides
const (
	DefaultTXTopic = "b/tx"
	DefaultRXTopic = "b/rx"
)

// ResolveTopics extracts the TX and RX topic names from the MQTT
// endpoint address. Topic overrides ride after the base URL as
// comma-separated suffixes: RX is everything after the last comma,
// TX is everything after the first. For two overrides the TX value
// therefore spans both segments; this reproduces the inherited
// splitting rule exactly and is covered by tests.
func ResolveTopics(addr string) (tx, rx string) {
	rx = DefaultRXTopic
	if i := strings.LastIndex(addr, ","); i >= 0 {
		rx = addr[i+1:]
	}

	tx = DefaultTXTopic
	if i := strings.Index(addr, ","); i >= 0 {
		tx = addr[i+1:]
	}

	return tx, rx
}

// BrokerAddress converts the configured MQTT endpoint address into a
// broker dial address: topic suffix and query dropped, mqtt scheme
// mapped to tcp and mqtts to ssl.
func BrokerAddress(addr string) (string, error) {
	base := addr
	if i := strings.Index(base, ","); i >= 0 {
		base = base[:i]
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid mqtt address %q: %w", addr, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid mqtt address %q: missing host", addr)
	}

	scheme := u.Scheme
	switch scheme {
	case "mqtts", "ssl", "tls":
		scheme = "ssl"
	case "ws", "wss":
		// WebSocket brokers are dialed as-is
	default:
		scheme = "tcp"
	}

	return fmt.Sprintf("%s://%s", scheme, u.Host), nil
}

// listenAddress extracts the host:port to bind from a tcp:// or ws://
// endpoint URL. A bare host:port is accepted as-is.
func listenAddress(rawURL string) (string, error) {
	if !strings.Contains(rawURL, "://") {
		return rawURL, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid listen address %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid listen address %q: missing host", rawURL)
	}

	return u.Host, nil
}
