// internal/protocol/serial_connection.go
package protocol

import (
	"context"
	"errors"
	"fmt"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// SerialConnection implements Transport for serial ports
type SerialConnection struct {
	line
	config *SerialConfig
	port   serial.Port
	logger *zap.Logger
}

// NewSerialConnection creates a new serial connection
func NewSerialConnection(config *SerialConfig, logger *zap.Logger) *SerialConnection {
	return &SerialConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "serial"),
			zap.String("port", config.Port),
		),
	}
}

// Open opens the device at the configured rate
func (sc *SerialConnection) Open(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.open {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	port, err := serial.Open(sc.config.Port, sc.mode())
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", sc.config.Port, describeOpenError(err))
	}

	// Zero timeout makes Read return immediately with whatever is buffered
	if err := port.SetReadTimeout(sc.config.Timeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	sc.port = port
	sc.markOpenLocked()
	sc.logger.Debug("Serial port opened", zap.Int("baud_rate", sc.config.BaudRate))
	return nil
}

func (sc *SerialConnection) mode() *serial.Mode {
	stopBits := serial.OneStopBit
	if sc.config.StopBits == 2 {
		stopBits = serial.TwoStopBits
	}

	parity := serial.NoParity
	switch sc.config.Parity {
	case "odd":
		parity = serial.OddParity
	case "even":
		parity = serial.EvenParity
	}

	return &serial.Mode{
		BaudRate: sc.config.BaudRate,
		DataBits: sc.config.DataBits,
		StopBits: stopBits,
		Parity:   parity,
	}
}

// describeOpenError adds the library's error classification to the message
func describeOpenError(err error) error {
	var portErr *serial.PortError
	if !errors.As(err, &portErr) {
		return err
	}

	switch portErr.Code() {
	case serial.PortBusy:
		return fmt.Errorf("port busy (already in use): %w", err)
	case serial.PortNotFound:
		return fmt.Errorf("port not found: %w", err)
	case serial.PermissionDenied:
		return fmt.Errorf("permission denied: %w", err)
	case serial.InvalidSpeed:
		return fmt.Errorf("unsupported baud rate: %w", err)
	}
	return err
}

// Close releases the device. Closing a closed connection is a no-op.
func (sc *SerialConnection) Close() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if !sc.open {
		return nil
	}

	err := sc.port.Close()
	sc.port = nil
	sc.markClosedLocked()
	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	sc.logger.Debug("Serial port closed")
	return nil
}

// SetBaudRate changes the rate used by the next Open
func (sc *SerialConnection) SetBaudRate(baud int) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.open {
		return fmt.Errorf("cannot change baud rate while %s is open", sc.config.Port)
	}
	sc.config.BaudRate = baud
	return nil
}

// BaudRate returns the configured baud rate
func (sc *SerialConnection) BaudRate() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.config.BaudRate
}

// Write sends data in full or fails
func (sc *SerialConnection) Write(ctx context.Context, data []byte) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if !sc.open {
		return ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	n, err := sc.port.Write(data)
	if err != nil {
		sc.stats.ErrorCount++
		return fmt.Errorf("failed to write to serial port: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	sc.wroteLocked(n)
	return nil
}

// poll moves everything the driver has buffered into pending
func (sc *SerialConnection) poll() error {
	buffer := make([]byte, readChunkSize)
	for {
		n, err := sc.port.Read(buffer)
		if err != nil {
			sc.stats.ErrorCount++
			return fmt.Errorf("failed to read from serial port: %w", err)
		}
		if n == 0 {
			return nil
		}
		sc.receivedLocked(buffer[:n])
	}
}

// BytesAvailable returns how many received bytes are waiting to be read
func (sc *SerialConnection) BytesAvailable() (int, error) {
	return sc.available(sc.poll)
}

// ReadAvailable returns the received bytes without waiting for more
func (sc *SerialConnection) ReadAvailable() ([]byte, error) {
	return sc.drain(sc.poll)
}

// Flush discards unread input and unsent output
func (sc *SerialConnection) Flush() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if !sc.open {
		return ErrNotOpen
	}

	sc.pending = nil
	if err := sc.port.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("failed to reset output buffer: %w", err)
	}
	if err := sc.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("failed to reset input buffer: %w", err)
	}
	return nil
}

// GetProtocolType returns the protocol type
func (sc *SerialConnection) GetProtocolType() ConnectionType {
	return ConnectionTypeSerial
}
