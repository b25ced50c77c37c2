// internal/bridge/mqtt.go
package bridge

import (
	"fmt"
	"io"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MQTTTransport maintains one outward broker session. The session
// joins the registry once established, so serial fan-out publishes to
// the TX topic; messages arriving on the RX topic go to the serial
// sink. Reconnection is owned by the manager's healing loop, so paho
// auto-reconnect stays off and a lost session simply reports down.
type MQTTTransport struct {
	registry       *Registry
	sink           io.Writer
	clientID       string
	connectTimeout time.Duration
	logger         *zap.Logger

	// newClient is swapped for a fake in tests
	newClient func(*pahomqtt.ClientOptions) pahomqtt.Client
}

// NewMQTTTransport creates the MQTT transport
func NewMQTTTransport(registry *Registry, sink io.Writer, logger *zap.Logger) *MQTTTransport {
	return &MQTTTransport{
		registry:       registry,
		sink:           sink,
		clientID:       fmt.Sprintf("uart-bridge-%s", uuid.New().String()[:8]),
		connectTimeout: 10 * time.Second,
		logger:         logger.With(zap.String("transport", "mqtt")),
		newClient:      pahomqtt.NewClient,
	}
}

// Kind returns the transport kind
func (t *MQTTTransport) Kind() Kind { return KindMQTT }

// Start dials the broker with clean-session semantics. The connect is
// asynchronous: a failed connect or a later session loss reports down,
// and the manager redials on a following tick.
func (t *MQTTTransport) Start(rawURL string, down func()) (Handle, error) {
	broker, err := BrokerAddress(rawURL)
	if err != nil {
		return nil, err
	}
	txTopic, rxTopic := ResolveTopics(rawURL)

	opts := pahomqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(t.clientID).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectTimeout(t.connectTimeout)

	var conn *MQTTConn

	opts.SetOnConnectHandler(func(c pahomqtt.Client) {
		// Session established: subscribe RX at QoS 1, then enable
		// the session for fan-out
		c.Subscribe(rxTopic, 1, t.onMessage)
		t.registry.Add(conn)
		t.logger.Info("MQTT session established",
			zap.String("broker", broker),
			zap.String("rx_topic", rxTopic),
			zap.String("tx_topic", txTopic),
		)
	})

	opts.SetConnectionLostHandler(func(c pahomqtt.Client, lostErr error) {
		t.registry.Remove(conn.ID())
		t.logger.Warn("MQTT session lost", zap.Error(lostErr))
		down()
	})

	client := t.newClient(opts)
	conn = NewMQTTConn(client, txTopic)

	token := client.Connect()
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			t.logger.Warn("MQTT connect failed",
				zap.String("broker", broker),
				zap.Error(err),
			)
			down()
		}
	}()

	return &mqttHandle{registry: t.registry, conn: conn}, nil
}

// onMessage forwards RX-topic payloads to the serial sink
func (t *MQTTTransport) onMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	if _, err := t.sink.Write(msg.Payload()); err != nil {
		t.logger.Warn("Serial write failed", zap.Error(err))
	}
}

// mqttHandle is the running broker session
type mqttHandle struct {
	registry *Registry
	conn     *MQTTConn
}

// Close removes the session from fan-out and disconnects
func (h *mqttHandle) Close() error {
	h.registry.Remove(h.conn.ID())
	h.conn.client.Disconnect(250)
	return nil
}
