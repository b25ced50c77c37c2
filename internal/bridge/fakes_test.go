// internal/bridge/fakes_test.go
package bridge

import (
	"errors"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// fakePort is an in-memory serial device: scripted reads, recorded
// writes. It satisfies both serial.Port and the transports' sink.
type fakePort struct {
	mu      sync.Mutex
	reads   [][]byte
	written []byte
	readErr error
	open    bool
}

func newFakePort() *fakePort {
	return &fakePort{open: true}
}

func (p *fakePort) Open() error  { p.mu.Lock(); defer p.mu.Unlock(); p.open = true; return nil }
func (p *fakePort) Close() error { p.mu.Lock(); defer p.mu.Unlock(); p.open = false; return nil }
func (p *fakePort) IsOpen() bool { p.mu.Lock(); defer p.mu.Unlock(); return p.open }

func (p *fakePort) queueRead(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reads = append(p.reads, data)
}

func (p *fakePort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readErr != nil {
		return 0, p.readErr
	}
	if len(p.reads) == 0 {
		return 0, nil
	}
	n := copy(buf, p.reads[0])
	p.reads = p.reads[1:]
	return n, nil
}

func (p *fakePort) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.written = append(p.written, data...)
	return len(data), nil
}

func (p *fakePort) writtenBytes() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]byte, len(p.written))
	copy(out, p.written)
	return out
}

// fakeTransport counts start attempts and exposes the down callback
type fakeTransport struct {
	kind Kind

	mu       sync.Mutex
	starts   int
	startErr error
	lastDown func()
	handles  []*fakeHandle
}

func (f *fakeTransport) Kind() Kind { return f.kind }

func (f *fakeTransport) Start(url string, down func()) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.lastDown = down
	h := &fakeHandle{}
	f.handles = append(f.handles, h)
	return h, nil
}

func (f *fakeTransport) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func (f *fakeTransport) down() func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastDown
}

type fakeHandle struct {
	mu     sync.Mutex
	closed bool
}

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *fakeHandle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// fakeToken is an already-resolved paho token
type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type publishRecord struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type subscribeRecord struct {
	topic    string
	qos      byte
	callback pahomqtt.MessageHandler
}

// fakeMQTTClient records publishes and subscriptions
type fakeMQTTClient struct {
	mu           sync.Mutex
	connected    bool
	connectErr   error
	publishes    []publishRecord
	subscribes   []subscribeRecord
	disconnected bool
}

func (c *fakeMQTTClient) IsConnected() bool      { c.mu.Lock(); defer c.mu.Unlock(); return c.connected }
func (c *fakeMQTTClient) IsConnectionOpen() bool { return c.IsConnected() }

func (c *fakeMQTTClient) Connect() pahomqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connectErr != nil {
		return &fakeToken{err: c.connectErr}
	}
	c.connected = true
	return &fakeToken{}
}

func (c *fakeMQTTClient) Disconnect(quiesce uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	c.disconnected = true
}

func (c *fakeMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishes = append(c.publishes, publishRecord{
		topic:    topic,
		qos:      qos,
		retained: retained,
		payload:  append([]byte(nil), payload.([]byte)...),
	})
	return &fakeToken{}
}

func (c *fakeMQTTClient) Subscribe(topic string, qos byte, callback pahomqtt.MessageHandler) pahomqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribes = append(c.subscribes, subscribeRecord{topic: topic, qos: qos, callback: callback})
	return &fakeToken{}
}

func (c *fakeMQTTClient) SubscribeMultiple(filters map[string]byte, callback pahomqtt.MessageHandler) pahomqtt.Token {
	return &fakeToken{}
}

func (c *fakeMQTTClient) Unsubscribe(topics ...string) pahomqtt.Token { return &fakeToken{} }

func (c *fakeMQTTClient) AddRoute(topic string, callback pahomqtt.MessageHandler) {}

func (c *fakeMQTTClient) OptionsReader() pahomqtt.ClientOptionsReader {
	return pahomqtt.ClientOptionsReader{}
}

func (c *fakeMQTTClient) publishRecords() []publishRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]publishRecord(nil), c.publishes...)
}

func (c *fakeMQTTClient) subscribeRecords() []subscribeRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]subscribeRecord(nil), c.subscribes...)
}

// fakeMessage is a received MQTT message
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

var errFakeConnect = errors.New("broker unreachable")
