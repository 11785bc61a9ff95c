package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
	"go.uber.org/zap"
)

func TestConnectionTypeOf(t *testing.T) {
	assert.Equal(t, ConnectionTypeSerial, ConnectionTypeOf("/dev/ttyMFD2"))
	assert.Equal(t, ConnectionTypeSerial, ConnectionTypeOf("COM3"))
	assert.Equal(t, ConnectionTypeTCP, ConnectionTypeOf("tcp://radio.local:4001"))
}

func TestCreateTransport(t *testing.T) {
	tests := []struct {
		name     string
		config   SerialConfig
		wantType ConnectionType
		wantErr  bool
	}{
		{"serial device", SerialConfig{Port: "/dev/ttyUSB0", BaudRate: 57600}, ConnectionTypeSerial, false},
		{"tcp bridge", SerialConfig{Port: "tcp://127.0.0.1:4001", BaudRate: 57600}, ConnectionTypeTCP, false},
		{"empty port", SerialConfig{}, "", true},
		{"tcp without port", SerialConfig{Port: "tcp://127.0.0.1"}, "", true},
		{"tcp port out of range", SerialConfig{Port: "tcp://127.0.0.1:70000"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport, err := CreateTransport(tt.config, zap.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantType, transport.GetProtocolType())
			assert.Equal(t, tt.config.BaudRate, transport.BaudRate())
			assert.False(t, transport.IsOpen())
		})
	}
}

func TestSerialConnection_Closed(t *testing.T) {
	conn := NewSerialConnection(&SerialConfig{Port: "/dev/ttyUSB0", BaudRate: 9600}, zap.NewNop())

	assert.NoError(t, conn.Close())
	assert.NoError(t, conn.SetBaudRate(57600))
	assert.Equal(t, 57600, conn.BaudRate())

	_, err := conn.BytesAvailable()
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = conn.ReadAvailable()
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, conn.Flush(), ErrNotOpen)
}

func TestSerialConnection_OpenMissingPort(t *testing.T) {
	conn := NewSerialConnection(&SerialConfig{
		Port:     "/dev/does-not-exist-sikconfig",
		BaudRate: 57600,
		DataBits: 8,
		StopBits: 1,
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	err := conn.Open(ctx)
	assert.Error(t, err)
	assert.False(t, conn.IsOpen())
}

func TestSerialConnection_Mode(t *testing.T) {
	conn := NewSerialConnection(&SerialConfig{
		Port:     "/dev/ttyUSB0",
		BaudRate: 115200,
		DataBits: 8,
		StopBits: 2,
		Parity:   "even",
	}, zap.NewNop())

	mode := conn.mode()
	assert.Equal(t, 115200, mode.BaudRate)
	assert.Equal(t, 8, mode.DataBits)
	assert.Equal(t, serial.TwoStopBits, mode.StopBits)
	assert.Equal(t, serial.EvenParity, mode.Parity)
}
