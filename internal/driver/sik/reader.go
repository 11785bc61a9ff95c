// internal/driver/sik/reader.go
package sik

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"

	"sik-config/internal/protocol"
	"sik-config/internal/utils"
)

// ResponseReader drains whatever the radio sends after a command
type ResponseReader struct {
	transport protocol.Transport
	clock     Clock
	settle    time.Duration
	maxRounds int
	logger    *utils.RadioLogger
}

// NewResponseReader creates a reader that waits settle between drains. maxRounds caps the
// number of drains per response; 0 leaves it unbounded.
func NewResponseReader(transport protocol.Transport, clock Clock, settle time.Duration, maxRounds int, logger *utils.RadioLogger) *ResponseReader {
	return &ResponseReader{
		transport: transport,
		clock:     clock,
		settle:    settle,
		maxRounds: maxRounds,
		logger:    logger,
	}
}

// ReadResponse reads until the radio goes quiet. The radio may still be transmitting on
// the first check, so after every drain it waits and checks again; the response ends when
// nothing arrived during the wait. A radio that never stops sending keeps this looping
// unless maxRounds or ctx stops it.
func (r *ResponseReader) ReadResponse(ctx context.Context) (string, error) {
	var raw []byte

	pending, err := r.transport.BytesAvailable()
	if err != nil {
		return "", fmt.Errorf("failed to poll radio: %w", err)
	}
	r.logger.Debug("Characters in receive buffer before reading", zap.Int("pending", pending))

	rounds := 0
	for pending > 0 {
		data, err := r.transport.ReadAvailable()
		raw = append(raw, data...)
		if err != nil {
			return DecodeText(raw), fmt.Errorf("failed to read radio response: %w", err)
		}

		rounds++
		if r.maxRounds > 0 && rounds >= r.maxRounds {
			r.logger.Warn("Radio kept transmitting, giving up on response",
				zap.Int("rounds", rounds),
				zap.Int("bytes", len(raw)),
			)
			break
		}

		if err := r.clock.Sleep(ctx, r.settle); err != nil {
			return DecodeText(raw), err
		}

		pending, err = r.transport.BytesAvailable()
		if err != nil {
			return DecodeText(raw), fmt.Errorf("failed to poll radio: %w", err)
		}
		r.logger.Debug("Characters in receive buffer after waiting",
			zap.Int("pending", pending),
			zap.Duration("settle", r.settle),
		)
	}

	return DecodeText(raw), nil
}

// DecodeText converts radio output to text, replacing invalid UTF-8 with U+FFFD
func DecodeText(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	decoded, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "\uFFFD")
	}
	return string(decoded)
}
