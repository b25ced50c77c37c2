// internal/bridge/tcp.go
package bridge

import (
	"io"
	"net"

	"go.uber.org/zap"
)

// TCPTransport listens for raw TCP clients and bridges them to the
// serial sink. Every received chunk is forwarded to the sink verbatim;
// serial fan-out reaches clients through the registry.
type TCPTransport struct {
	registry *Registry
	sink     io.Writer
	bufSize  int
	logger   *zap.Logger
}

// NewTCPTransport creates the TCP transport
func NewTCPTransport(registry *Registry, sink io.Writer, bufSize int, logger *zap.Logger) *TCPTransport {
	if bufSize <= 0 {
		bufSize = 512
	}
	return &TCPTransport{
		registry: registry,
		sink:     sink,
		bufSize:  bufSize,
		logger:   logger.With(zap.String("transport", "tcp")),
	}
}

// Kind returns the transport kind
func (t *TCPTransport) Kind() Kind { return KindTCP }

// Start binds the listener and begins accepting clients. down is
// invoked when the listener dies so the manager restarts it.
func (t *TCPTransport) Start(rawURL string, down func()) (Handle, error) {
	addr, err := listenAddress(rawURL)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	t.logger.Info("TCP listener started", zap.String("address", ln.Addr().String()))
	go t.acceptLoop(ln, down)

	return &tcpHandle{ln: ln}, nil
}

// acceptLoop accepts clients until the listener closes
func (t *TCPTransport) acceptLoop(ln net.Listener, down func()) {
	defer down()

	for {
		conn, err := ln.Accept()
		if err != nil {
			t.logger.Info("TCP listener stopped", zap.Error(err))
			return
		}

		// An accepted TCP connection needs no further handshake
		client := NewTCPConn(conn)
		t.registry.Add(client)
		t.logger.Info("TCP client connected",
			zap.String("client_id", client.ID()),
			zap.String("remote_addr", conn.RemoteAddr().String()),
		)

		go t.readLoop(client)
	}
}

// readLoop forwards client bytes to the serial sink until the
// connection closes
func (t *TCPTransport) readLoop(client *TCPConn) {
	defer func() {
		t.registry.Remove(client.ID())
		client.conn.Close()
		t.logger.Info("TCP client disconnected", zap.String("client_id", client.ID()))
	}()

	buf := make([]byte, t.bufSize)
	for {
		n, err := client.conn.Read(buf)
		if n > 0 {
			if _, werr := t.sink.Write(buf[:n]); werr != nil {
				t.logger.Warn("Serial write failed", zap.Error(werr))
			}
		}
		if err != nil {
			return
		}
	}
}

// tcpHandle is the running TCP listener
type tcpHandle struct {
	ln net.Listener
}

// Close stops the listener
func (h *tcpHandle) Close() error { return h.ln.Close() }

// Addr returns the bound listener address
func (h *tcpHandle) Addr() net.Addr { return h.ln.Addr() }
