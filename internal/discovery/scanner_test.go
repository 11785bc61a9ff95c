package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubScanner struct {
	name      string
	available bool
	ports     []*DiscoveredPort
	err       error
}

func (s *stubScanner) Scan(context.Context) ([]*DiscoveredPort, error) { return s.ports, s.err }
func (s *stubScanner) GetScannerType() string                          { return s.name }
func (s *stubScanner) IsAvailable() bool                               { return s.available }

func TestScanAll_OrdersByConfidence(t *testing.T) {
	manager := NewScannerManager(zap.NewNop())
	manager.RegisterScanner(&stubScanner{name: "serial", available: true, ports: []*DiscoveredPort{
		{Name: "/dev/ttyS0", Confidence: 0.2},
		{Name: "/dev/ttyUSB1", Confidence: 0.9},
		{Name: "/dev/ttyUSB0", Confidence: 0.9},
	}})
	manager.RegisterScanner(&stubScanner{name: "offline", available: false, ports: []*DiscoveredPort{{Name: "skipped"}}})
	manager.RegisterScanner(&stubScanner{name: "broken", available: true, err: errors.New("boom")})

	ports, err := manager.ScanAll(context.Background())
	require.NoError(t, err)

	var names []string
	for _, p := range ports {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"/dev/ttyUSB0", "/dev/ttyUSB1", "/dev/ttyS0"}, names)
}

func TestDiscoveredPortString(t *testing.T) {
	plain := &DiscoveredPort{Name: "/dev/ttyS0"}
	assert.Equal(t, "/dev/ttyS0", plain.String())

	usb := &DiscoveredPort{
		Name:         "/dev/ttyUSB0",
		IsUSB:        true,
		VID:          "0403",
		PID:          "6001",
		Bridge:       "FTDI FT232R",
		SerialNumber: "A50285BI",
	}
	assert.Equal(t, "/dev/ttyUSB0\tUSB 0403:6001\tFTDI FT232R\tserial=A50285BI", usb.String())
}
