// internal/bridge/registry_test.go
package bridge

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistryAddRemove(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	require.Equal(t, 0, reg.Len())

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	conn := NewTCPConn(server)
	reg.Add(conn)
	require.Equal(t, 1, reg.Len())
	require.Equal(t, KindTCP, conn.Kind())

	reg.Remove(conn.ID())
	require.Equal(t, 0, reg.Len())

	// Removing twice is harmless
	reg.Remove(conn.ID())
	require.Equal(t, 0, reg.Len())
}

func TestBroadcastTCPExactBytes(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	reg.Add(NewTCPConn(server))

	go reg.Broadcast([]byte("world"))

	buf := make([]byte, 5)
	_, err := io.ReadFull(client, buf)
	require.NoError(t, err)
	require.Equal(t, []byte("world"), buf)
}

func TestBroadcastMQTTPublishesTXTopic(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	fc := &fakeMQTTClient{connected: true}
	reg.Add(NewMQTTConn(fc, "b/tx"))

	reg.Broadcast([]byte("world"))

	pubs := fc.publishRecords()
	require.Len(t, pubs, 1)
	require.Equal(t, "b/tx", pubs[0].topic)
	require.Equal(t, byte(1), pubs[0].qos)
	require.False(t, pubs[0].retained)
	require.Equal(t, []byte("world"), pubs[0].payload)
}

func TestBroadcastSkipsRemovedConnection(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	fc := &fakeMQTTClient{connected: true}
	conn := NewMQTTConn(fc, "b/tx")
	reg.Add(conn)
	reg.Remove(conn.ID())

	reg.Broadcast([]byte("world"))
	require.Empty(t, fc.publishRecords())
}

func TestBroadcastPayloadIsCopiedForMQTT(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	fc := &fakeMQTTClient{connected: true}
	reg.Add(NewMQTTConn(fc, "b/tx"))

	// The loop reuses its read buffer between ticks; the published
	// payload must not alias it
	buf := []byte("world")
	reg.Broadcast(buf)
	copy(buf, "XXXXX")

	pubs := fc.publishRecords()
	require.Len(t, pubs, 1)
	require.Equal(t, []byte("world"), pubs[0].payload)
}

func TestBroadcastEmptyIsNoop(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	fc := &fakeMQTTClient{connected: true}
	reg.Add(NewMQTTConn(fc, "b/tx"))

	reg.Broadcast(nil)
	require.Empty(t, fc.publishRecords())
}

func TestBroadcastContinuesPastFailedSend(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	// A closed TCP connection fails its write; the MQTT session must
	// still receive the broadcast
	client, server := net.Pipe()
	client.Close()
	server.Close()
	reg.Add(NewTCPConn(server))

	fc := &fakeMQTTClient{connected: true}
	reg.Add(NewMQTTConn(fc, "b/tx"))

	reg.Broadcast([]byte("world"))
	require.Len(t, fc.publishRecords(), 1)
}
