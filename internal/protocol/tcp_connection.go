// internal/protocol/tcp_connection.go
package protocol

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// TCPConnection implements Transport for a radio behind a serial-over-TCP bridge.
// The bridge owns the physical line rate, so baud changes are only recorded.
type TCPConnection struct {
	line
	config *TCPConfig
	conn   net.Conn
	logger *zap.Logger
}

// NewTCPConnection creates a new TCP connection
func NewTCPConnection(config *TCPConfig, logger *zap.Logger) *TCPConnection {
	return &TCPConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "tcp"),
			zap.String("host", config.Host),
			zap.Int("port", config.Port),
		),
	}
}

func (tc *TCPConnection) address() string {
	return net.JoinHostPort(tc.config.Host, strconv.Itoa(tc.config.Port))
}

// Open dials the bridge
func (tc *TCPConnection) Open(ctx context.Context) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.open {
		return nil
	}

	dialer := &net.Dialer{
		Timeout:   tc.config.Timeout,
		KeepAlive: 30 * time.Second,
	}
	conn, err := dialer.DialContext(ctx, "tcp", tc.address())
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", tc.address(), err)
	}

	tc.conn = conn
	tc.markOpenLocked()
	tc.logger.Debug("TCP bridge connected", zap.Int("baud_rate", tc.config.BaudRate))
	return nil
}

// Close hangs up on the bridge. Closing a closed connection is a no-op.
func (tc *TCPConnection) Close() error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if !tc.open {
		return nil
	}

	err := tc.conn.Close()
	tc.conn = nil
	tc.markClosedLocked()
	if err != nil {
		return fmt.Errorf("failed to close TCP connection: %w", err)
	}

	tc.logger.Debug("TCP bridge disconnected")
	return nil
}

// SetBaudRate records the rate; it has no effect on the bridge
func (tc *TCPConnection) SetBaudRate(baud int) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.open {
		return fmt.Errorf("cannot change baud rate while %s is open", tc.address())
	}
	tc.config.BaudRate = baud
	return nil
}

// BaudRate returns the recorded baud rate
func (tc *TCPConnection) BaudRate() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.config.BaudRate
}

// Write sends data, bounded by the context deadline if there is one
func (tc *TCPConnection) Write(ctx context.Context, data []byte) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if !tc.open {
		return ErrNotOpen
	}

	deadline, _ := ctx.Deadline()
	tc.conn.SetWriteDeadline(deadline)

	n, err := tc.conn.Write(data)
	if err != nil {
		tc.stats.ErrorCount++
		return fmt.Errorf("failed to write to TCP connection: %w", err)
	}

	tc.wroteLocked(n)
	return nil
}

// poll reads until the socket stays quiet for PollTimeout
func (tc *TCPConnection) poll() error {
	buffer := make([]byte, readChunkSize)
	for {
		if err := tc.conn.SetReadDeadline(time.Now().Add(tc.config.PollTimeout)); err != nil {
			return fmt.Errorf("failed to set read deadline: %w", err)
		}

		n, err := tc.conn.Read(buffer)
		if n > 0 {
			tc.receivedLocked(buffer[:n])
		}
		switch {
		case errors.Is(err, os.ErrDeadlineExceeded):
			return nil
		case err != nil:
			tc.stats.ErrorCount++
			return fmt.Errorf("failed to read from TCP connection: %w", err)
		case n == 0:
			return nil
		}
	}
}

// BytesAvailable returns how many received bytes are waiting to be read
func (tc *TCPConnection) BytesAvailable() (int, error) {
	return tc.available(tc.poll)
}

// ReadAvailable returns the received bytes without waiting for more
func (tc *TCPConnection) ReadAvailable() ([]byte, error) {
	return tc.drain(tc.poll)
}

// Flush discards everything received so far
func (tc *TCPConnection) Flush() error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if !tc.open {
		return ErrNotOpen
	}

	err := tc.poll()
	tc.pending = nil
	return err
}

// GetProtocolType returns the protocol type
func (tc *TCPConnection) GetProtocolType() ConnectionType {
	return ConnectionTypeTCP
}
