// internal/driver/sik/prober.go
package sik

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"sik-config/internal/model"
	"sik-config/internal/protocol"
	"sik-config/internal/utils"
)

// BaudProber finds the serial speed the radio is listening at
type BaudProber struct {
	transport   protocol.Transport
	commandMode *CommandModeController
	candidates  []int
	logger      *utils.RadioLogger
}

// NewBaudProber creates a prober over every supported serial speed
func NewBaudProber(transport protocol.Transport, commandMode *CommandModeController, logger *utils.RadioLogger) *BaudProber {
	return NewBaudProberWithCandidates(transport, commandMode, model.SerialSpeeds(), logger)
}

// NewBaudProberWithCandidates creates a prober over the given rates
func NewBaudProberWithCandidates(transport protocol.Transport, commandMode *CommandModeController, candidates []int, logger *utils.RadioLogger) *BaudProber {
	rates := append([]int(nil), candidates...)
	sort.Sort(sort.Reverse(sort.IntSlice(rates)))

	return &BaudProber{
		transport:   transport,
		commandMode: commandMode,
		candidates:  rates,
		logger:      logger,
	}
}

// Candidates returns the rates in the order they are tried
func (p *BaudProber) Candidates() []int {
	return append([]int(nil), p.candidates...)
}

// Probe tries each candidate from fastest to slowest and returns the first rate at which
// the radio enters command mode. On success the transport is left open in command mode.
// A port that cannot be opened aborts the probe; exhausting the candidates returns an
// undetectable error.
func (p *BaudProber) Probe(ctx context.Context) (int, error) {
	if err := p.transport.Close(); err != nil {
		return 0, fmt.Errorf("failed to close transport before probing: %w", err)
	}

	for _, rate := range p.candidates {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		if err := p.transport.SetBaudRate(rate); err != nil {
			return 0, fmt.Errorf("failed to set baud rate %d: %w", rate, err)
		}

		if err := p.transport.Open(ctx); err != nil {
			p.logger.LogConnection("open", rate, err)
			return 0, model.NewConnectionError(err)
		}

		p.logger.Debug("Testing serial port", zap.Int("baud_rate", rate))

		ok, err := p.commandMode.Enter(ctx)
		if err != nil {
			if closeErr := p.transport.Close(); closeErr != nil {
				p.logger.Warn("Failed to close transport", zap.Int("baud_rate", rate), zap.Error(closeErr))
			}
			return 0, err
		}
		if ok {
			p.logger.Debug("Test passed", zap.Int("baud_rate", rate))
			return rate, nil
		}

		p.logger.Debug("Test failed", zap.Int("baud_rate", rate))
		if err := p.transport.Close(); err != nil {
			return 0, fmt.Errorf("failed to close transport: %w", err)
		}
	}

	return 0, &model.RadioError{
		Kind: model.KindUndetectable,
		Code: model.ExitBaudUndetectable,
		Err:  fmt.Errorf("no response at any of %v baud", p.candidates),
	}
}
