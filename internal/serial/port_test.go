// internal/serial/port_test.go
package serial

import (
	"testing"

	"github.com/stretchr/testify/require"
	goserial "go.bug.st/serial"
	"go.uber.org/zap"

	"uart-bridge/internal/config"
)

func TestStopBitsMapping(t *testing.T) {
	require.Equal(t, goserial.OneStopBit, stopBits(1))
	require.Equal(t, goserial.TwoStopBits, stopBits(2))
	require.Equal(t, goserial.OneStopBit, stopBits(0))
}

func TestParityMapping(t *testing.T) {
	require.Equal(t, goserial.NoParity, parity("none"))
	require.Equal(t, goserial.OddParity, parity("odd"))
	require.Equal(t, goserial.EvenParity, parity("even"))
	require.Equal(t, goserial.NoParity, parity(""))
	require.Equal(t, goserial.NoParity, parity("bogus"))
}

func TestClosedPortRejectsIO(t *testing.T) {
	port := NewUARTPort(&config.SerialConfig{
		Device:   "/dev/null-not-a-uart",
		BaudRate: 115200,
		DataBits: 8,
		StopBits: 1,
		Parity:   "none",
	}, zap.NewNop())

	require.False(t, port.IsOpen())

	_, err := port.Read(make([]byte, 16))
	require.Error(t, err)

	_, err = port.Write([]byte("x"))
	require.Error(t, err)

	// Closing a never-opened port is a no-op
	require.NoError(t, port.Close())
}
