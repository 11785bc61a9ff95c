// internal/protocol/protocol.go
package protocol

import (
	"context"
	"errors"
	"time"
)

// ConnectionType represents how the radio is reached
type ConnectionType string

const (
	ConnectionTypeSerial ConnectionType = "SERIAL"
	ConnectionTypeTCP    ConnectionType = "TCP"
)

// ErrNotOpen is returned by I/O on a closed transport
var ErrNotOpen = errors.New("transport not open")

// Transport is a byte-oriented link to the radio. Reads never block: BytesAvailable
// reports what is pending and ReadAvailable drains it.
type Transport interface {
	// Connection lifecycle
	Open(ctx context.Context) error
	Close() error
	IsOpen() bool

	// Line settings. SetBaudRate is only allowed while closed.
	SetBaudRate(baud int) error
	BaudRate() int

	// Data communication
	Write(ctx context.Context, data []byte) error
	BytesAvailable() (int, error)
	ReadAvailable() ([]byte, error)
	Flush() error

	// Protocol information
	GetProtocolType() ConnectionType
	GetStats() ProtocolStats
}

// ProtocolStats provides protocol-level statistics
type ProtocolStats struct {
	BytesWritten   int64     `json:"bytes_written"`
	BytesRead      int64     `json:"bytes_read"`
	OperationCount int64     `json:"operation_count"`
	ErrorCount     int64     `json:"error_count"`
	OpenCount      int64     `json:"open_count"`
	LastActivity   time.Time `json:"last_activity"`
	IsConnected    bool      `json:"is_connected"`
}
