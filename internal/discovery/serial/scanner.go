// internal/discovery/serial/scanner.go
package serial

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"sik-config/internal/discovery"
	"sik-config/internal/protocol"
)

// usbBridges lists USB-UART chips SiK radios ship with, keyed by "VID:PID"
var usbBridges = map[string]string{
	"0403:6001": "FTDI FT232R",
	"0403:6015": "FTDI FT231X",
	"10C4:EA60": "Silicon Labs CP210x",
	"1A86:7523": "WCH CH340",
	"26AC:0011": "3DR radio (PX4 USB)",
}

// Scanner lists serial ports through the OS enumerator
type Scanner struct {
	logger *zap.Logger
	config *Config
	list   func() ([]*enumerator.PortDetails, error)
}

// Config for serial scanner
type Config struct {
	// PortPatterns are glob patterns matched against the port's base name. Empty keeps
	// every port.
	PortPatterns []string `json:"port_patterns"`
}

// NewScanner creates a new serial scanner
func NewScanner(logger *zap.Logger, config *Config) *Scanner {
	if config == nil {
		config = &Config{
			PortPatterns: getDefaultPortPatterns(),
		}
	}

	return &Scanner{
		logger: logger.With(zap.String("scanner", "serial")),
		config: config,
		list:   enumerator.GetDetailedPortsList,
	}
}

// GetScannerType returns scanner type
func (s *Scanner) GetScannerType() string {
	return "serial"
}

// IsAvailable checks if serial scanning is available
func (s *Scanner) IsAvailable() bool {
	return true
}

// Scan lists the serial ports matching the configured patterns
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredPort, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	details, err := s.list()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports: %w", err)
	}

	var ports []*discovery.DiscoveredPort
	for _, d := range details {
		if !s.matches(d.Name) {
			s.logger.Debug("Skipping port", zap.String("port", d.Name))
			continue
		}
		ports = append(ports, describe(d))
	}

	s.logger.Debug("Serial scan completed",
		zap.Int("ports_listed", len(details)),
		zap.Int("ports_matched", len(ports)),
	)
	return ports, nil
}

func (s *Scanner) matches(name string) bool {
	if len(s.config.PortPatterns) == 0 {
		return true
	}

	base := filepath.Base(name)
	for _, pattern := range s.config.PortPatterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func describe(d *enumerator.PortDetails) *discovery.DiscoveredPort {
	port := &discovery.DiscoveredPort{
		ConnectionType: protocol.ConnectionTypeSerial,
		Name:           d.Name,
		IsUSB:          d.IsUSB,
		Confidence:     0.2,
	}

	if !d.IsUSB {
		return port
	}

	port.VID = strings.ToUpper(d.VID)
	port.PID = strings.ToUpper(d.PID)
	port.SerialNumber = d.SerialNumber
	port.Product = d.Product
	port.Confidence = 0.5

	if bridge, ok := usbBridges[port.VID+":"+port.PID]; ok {
		port.Bridge = bridge
		port.Confidence = 0.9
	}
	return port
}

// getDefaultPortPatterns returns platform-specific port name patterns
func getDefaultPortPatterns() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"COM*"}
	case "darwin":
		return []string{"cu.usbserial*", "cu.usbmodem*", "tty.usbserial*", "tty.usbmodem*"}
	default:
		return []string{"ttyUSB*", "ttyACM*", "ttyMFD*", "ttyAMA*", "ttyS*"}
	}
}
