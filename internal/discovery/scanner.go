// internal/discovery/scanner.go
package discovery

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"sik-config/internal/protocol"
)

// PortScanner finds ports a radio may be attached to
type PortScanner interface {
	Scan(ctx context.Context) ([]*DiscoveredPort, error)
	GetScannerType() string
	IsAvailable() bool
}

// DiscoveredPort represents a candidate radio port
type DiscoveredPort struct {
	ConnectionType protocol.ConnectionType `json:"connection_type"`
	Name           string                  `json:"name"`
	IsUSB          bool                    `json:"is_usb"`
	VID            string                  `json:"vid,omitempty"`
	PID            string                  `json:"pid,omitempty"`
	SerialNumber   string                  `json:"serial_number,omitempty"`
	Product        string                  `json:"product,omitempty"`
	Bridge         string                  `json:"bridge,omitempty"`
	Confidence     float64                 `json:"confidence"` // 0.0-1.0
}

// String renders the port for the --list-ports output
func (p *DiscoveredPort) String() string {
	if !p.IsUSB {
		return p.Name
	}

	s := fmt.Sprintf("%s\tUSB %s:%s", p.Name, p.VID, p.PID)
	if p.Bridge != "" {
		s += "\t" + p.Bridge
	}
	if p.Product != "" {
		s += "\t" + p.Product
	}
	if p.SerialNumber != "" {
		s += "\tserial=" + p.SerialNumber
	}
	return s
}

// ScannerManager runs all registered scanners
type ScannerManager struct {
	scanners map[string]PortScanner
	logger   *zap.Logger
}

// NewScannerManager creates a new scanner manager
func NewScannerManager(logger *zap.Logger) *ScannerManager {
	return &ScannerManager{
		scanners: make(map[string]PortScanner),
		logger:   logger,
	}
}

// RegisterScanner registers a port scanner
func (sm *ScannerManager) RegisterScanner(scanner PortScanner) {
	scannerType := scanner.GetScannerType()
	sm.scanners[scannerType] = scanner
	sm.logger.Debug("Scanner registered", zap.String("type", scannerType))
}

// ScanAll scans with every available scanner. Ports are ordered by confidence, most
// likely radio first, then by name. A failing scanner is logged and skipped.
func (sm *ScannerManager) ScanAll(ctx context.Context) ([]*DiscoveredPort, error) {
	var allPorts []*DiscoveredPort

	for scannerType, scanner := range sm.scanners {
		if !scanner.IsAvailable() {
			sm.logger.Debug("Scanner not available, skipping", zap.String("type", scannerType))
			continue
		}

		ports, err := scanner.Scan(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return allPorts, ctx.Err()
			}
			sm.logger.Error("Scanner failed", zap.String("type", scannerType), zap.Error(err))
			continue
		}

		allPorts = append(allPorts, ports...)
		sm.logger.Debug("Scanner completed",
			zap.String("type", scannerType),
			zap.Int("ports_found", len(ports)),
		)
	}

	sort.SliceStable(allPorts, func(i, j int) bool {
		if allPorts[i].Confidence != allPorts[j].Confidence {
			return allPorts[i].Confidence > allPorts[j].Confidence
		}
		return allPorts[i].Name < allPorts[j].Name
	})

	return allPorts, nil
}
