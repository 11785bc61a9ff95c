// internal/protocol/factory.go
package protocol

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const tcpScheme = "tcp://"

// ConnectionTypeOf infers the connection type from a port name
func ConnectionTypeOf(port string) ConnectionType {
	if strings.HasPrefix(port, tcpScheme) {
		return ConnectionTypeTCP
	}
	return ConnectionTypeSerial
}

// CreateTransport creates a transport for config.Port: "tcp://host:port" selects a
// serial-over-TCP bridge, anything else is a serial device path.
func CreateTransport(config SerialConfig, logger *zap.Logger) (Transport, error) {
	if config.Port == "" {
		return nil, fmt.Errorf("port is required")
	}

	switch ConnectionTypeOf(config.Port) {
	case ConnectionTypeTCP:
		return createTCPTransport(config, logger)
	default:
		return createSerialTransport(config, logger)
	}
}

// createSerialTransport creates a serial transport
func createSerialTransport(config SerialConfig, logger *zap.Logger) (Transport, error) {
	serialConfig := &SerialConfig{
		Port:     config.Port,
		BaudRate: config.BaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "none",
		Timeout:  0,
	}

	if config.DataBits != 0 {
		serialConfig.DataBits = config.DataBits
	}
	if config.StopBits != 0 {
		serialConfig.StopBits = config.StopBits
	}
	if config.Parity != "" {
		serialConfig.Parity = config.Parity
	}

	logger.Debug("Creating serial transport",
		zap.String("port", serialConfig.Port),
		zap.Int("baud_rate", serialConfig.BaudRate),
	)

	return NewSerialConnection(serialConfig, logger), nil
}

// createTCPTransport creates a serial-over-TCP transport
func createTCPTransport(config SerialConfig, logger *zap.Logger) (Transport, error) {
	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(config.Port, tcpScheme))
	if err != nil {
		return nil, fmt.Errorf("invalid TCP address %q: %w", config.Port, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid TCP port number: %s", portStr)
	}

	tcpConfig := &TCPConfig{
		Host:        host,
		Port:        port,
		BaudRate:    config.BaudRate,
		Timeout:     10 * time.Second,
		PollTimeout: 20 * time.Millisecond,
	}

	logger.Debug("Creating TCP transport",
		zap.String("host", tcpConfig.Host),
		zap.Int("port", tcpConfig.Port),
	)

	return NewTCPConnection(tcpConfig, logger), nil
}
