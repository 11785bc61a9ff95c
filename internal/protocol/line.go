// internal/protocol/line.go
package protocol

import (
	"sync"
	"time"
)

const readChunkSize = 256

// line is the receive buffer and bookkeeping shared by the byte-stream transports.
// Methods ending in Locked expect mu to be held.
type line struct {
	mu      sync.Mutex
	open    bool
	pending []byte
	stats   ProtocolStats
}

func (l *line) markOpenLocked() {
	l.open = true
	l.pending = nil
	l.stats.IsConnected = true
	l.stats.OpenCount++
	l.stats.LastActivity = time.Now()
}

func (l *line) markClosedLocked() {
	l.open = false
	l.pending = nil
	l.stats.IsConnected = false
}

func (l *line) wroteLocked(n int) {
	l.stats.BytesWritten += int64(n)
	l.stats.OperationCount++
	l.stats.LastActivity = time.Now()
}

func (l *line) receivedLocked(data []byte) {
	l.pending = append(l.pending, data...)
	l.stats.BytesRead += int64(len(data))
	l.stats.LastActivity = time.Now()
}

// available polls the device and reports the buffered byte count
func (l *line) available(poll func() error) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.open {
		return 0, ErrNotOpen
	}
	err := poll()
	return len(l.pending), err
}

// drain polls the device and hands back everything buffered
func (l *line) drain(poll func() error) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.open {
		return nil, ErrNotOpen
	}
	err := poll()
	data := l.pending
	l.pending = nil
	l.stats.OperationCount++
	return data, err
}

// IsOpen returns whether the connection is open
func (l *line) IsOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open
}

// GetStats returns a snapshot of the connection statistics
func (l *line) GetStats() ProtocolStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}
