// internal/bridge/registry.go
package bridge

import (
	"net"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one fan-out destination. The concrete types are TCPConn,
// WSConn and MQTTConn; Broadcast dispatches on the concrete type to
// pick the send encoding.
type Client interface {
	ID() string
	Kind() Kind
}

// TCPConn wraps an accepted raw TCP client
type TCPConn struct {
	id   string
	conn net.Conn
}

// NewTCPConn wraps an accepted TCP connection
func NewTCPConn(conn net.Conn) *TCPConn {
	return &TCPConn{
		id:   uuid.New().String(),
		conn: conn,
	}
}

// ID returns the connection identifier
func (c *TCPConn) ID() string { return c.id }

// Kind returns the transport kind
func (c *TCPConn) Kind() Kind { return KindTCP }

// WSConn wraps an upgraded WebSocket client
type WSConn struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex // gorilla allows a single concurrent writer
}

// NewWSConn wraps an upgraded WebSocket connection
func NewWSConn(conn *websocket.Conn) *WSConn {
	return &WSConn{
		id:   uuid.New().String(),
		conn: conn,
	}
}

// ID returns the connection identifier
func (c *WSConn) ID() string { return c.id }

// Kind returns the transport kind
func (c *WSConn) Kind() Kind { return KindWebSocket }

// WriteText sends data as a single text frame
func (c *WSConn) WriteText(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// MQTTConn wraps the broker session; fan-out publishes to its TX topic
type MQTTConn struct {
	id      string
	client  pahomqtt.Client
	txTopic string
}

// NewMQTTConn wraps an established broker session
func NewMQTTConn(client pahomqtt.Client, txTopic string) *MQTTConn {
	return &MQTTConn{
		id:      uuid.New().String(),
		client:  client,
		txTopic: txTopic,
	}
}

// ID returns the connection identifier
func (c *MQTTConn) ID() string { return c.id }

// Kind returns the transport kind
func (c *MQTTConn) Kind() Kind { return KindMQTT }

// Registry tracks every handshake-complete client connection across
// all transports. Membership is the tag: a connection is added only
// once its handshake is done and removed on close, so fan-out never
// touches a half-open or closed connection.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
	logger  *zap.Logger
}

// NewRegistry creates an empty client registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		clients: make(map[string]Client),
		logger:  logger.With(zap.String("component", "registry")),
	}
}

// Add registers a handshake-complete connection
func (r *Registry) Add(c Client) {
	r.mu.Lock()
	r.clients[c.ID()] = c
	total := len(r.clients)
	r.mu.Unlock()

	r.logger.Info("Client registered",
		zap.String("client_id", c.ID()),
		zap.String("transport", c.Kind().String()),
		zap.Int("total_clients", total),
	)
}

// Remove deregisters a connection; it is excluded from all
// subsequent broadcasts
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	c, ok := r.clients[id]
	if ok {
		delete(r.clients, id)
	}
	total := len(r.clients)
	r.mu.Unlock()

	if ok {
		r.logger.Info("Client removed",
			zap.String("client_id", id),
			zap.String("transport", c.Kind().String()),
			zap.Int("total_clients", total),
		)
	}
}

// Len returns the number of registered connections
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Broadcast fans data out to every registered connection, encoded per
// transport: raw stream write for TCP, one text frame for WebSocket,
// a QoS-1 non-retained publish for MQTT. Sends are fire-and-forget; a
// failed send is logged and the connection's own close path removes it.
func (r *Registry) Broadcast(data []byte) {
	if len(data) == 0 {
		return
	}

	r.mu.RLock()
	clients := make([]Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	for _, c := range clients {
		switch cc := c.(type) {
		case *TCPConn:
			if _, err := cc.conn.Write(data); err != nil {
				r.logger.Debug("TCP send failed",
					zap.String("client_id", cc.id),
					zap.Error(err),
				)
			}
		case *WSConn:
			if err := cc.WriteText(data); err != nil {
				r.logger.Debug("WebSocket send failed",
					zap.String("client_id", cc.id),
					zap.Error(err),
				)
			}
		case *MQTTConn:
			// Publish is asynchronous; copy out of the shared read buffer
			payload := make([]byte, len(data))
			copy(payload, data)
			cc.client.Publish(cc.txTopic, 1, false, payload)
		}
	}
}
