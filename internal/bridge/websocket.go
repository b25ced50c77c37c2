// internal/bridge/websocket.go
package bridge

import (
	"io"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSTransport runs an HTTP listener that upgrades any request to a
// WebSocket and bridges frames to the serial sink. A client joins the
// registry only after the upgrade handshake completes.
type WSTransport struct {
	registry *Registry
	sink     io.Writer
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWSTransport creates the WebSocket transport
func NewWSTransport(registry *Registry, sink io.Writer, logger *zap.Logger) *WSTransport {
	return &WSTransport{
		registry: registry,
		sink:     sink,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The bridge is an open console; any origin may connect
				return true
			},
		},
		logger: logger.With(zap.String("transport", "websocket")),
	}
}

// Kind returns the transport kind
func (t *WSTransport) Kind() Kind { return KindWebSocket }

// Start binds the HTTP listener. down is invoked when the listener
// dies so the manager restarts it.
func (t *WSTransport) Start(rawURL string, down func()) (Handle, error) {
	addr, err := listenAddress(rawURL)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{Handler: http.HandlerFunc(t.handleUpgrade)}
	t.logger.Info("WebSocket listener started", zap.String("address", ln.Addr().String()))

	go func() {
		defer down()
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			t.logger.Info("WebSocket listener stopped", zap.Error(err))
		}
	}()

	return &wsHandle{srv: srv, ln: ln}, nil
}

// handleUpgrade upgrades any HTTP request on this listener
func (t *WSTransport) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := NewWSConn(conn)
	t.registry.Add(client)
	t.logger.Info("WebSocket client connected",
		zap.String("client_id", client.ID()),
		zap.String("remote_addr", r.RemoteAddr),
	)

	t.readLoop(client)
}

// readLoop forwards frame payloads to the serial sink until the
// connection closes. Each frame is consumed exactly once.
func (t *WSTransport) readLoop(client *WSConn) {
	defer func() {
		t.registry.Remove(client.ID())
		client.conn.Close()
		t.logger.Info("WebSocket client disconnected", zap.String("client_id", client.ID()))
	}()

	for {
		_, payload, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				t.logger.Error("WebSocket read error",
					zap.Error(err),
					zap.String("client_id", client.ID()),
				)
			}
			return
		}

		if len(payload) > 0 {
			if _, werr := t.sink.Write(payload); werr != nil {
				t.logger.Warn("Serial write failed", zap.Error(werr))
			}
		}
	}
}

// wsHandle is the running WebSocket listener
type wsHandle struct {
	srv *http.Server
	ln  net.Listener
}

// Close stops the HTTP server and its listener
func (h *wsHandle) Close() error { return h.srv.Close() }

// Addr returns the bound listener address
func (h *wsHandle) Addr() net.Addr { return h.ln.Addr() }
