// internal/driver/sik/command_mode.go
package sik

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sik-config/internal/config"
	"sik-config/internal/protocol"
	"sik-config/internal/utils"
)

// State is the radio's mode as seen by the controller
type State string

const (
	StateStreaming     State = "STREAMING"
	StateEscapePending State = "ESCAPE_PENDING"
	StateCommandMode   State = "COMMAND_MODE"
	StateFailed        State = "FAILED"
)

// CommandModeController moves the radio from transparent mode into its AT shell
type CommandModeController struct {
	transport protocol.Transport
	reader    *ResponseReader
	clock     Clock
	timing    config.TimingConfig
	ack       AckMatcher
	logger    *utils.RadioLogger
	state     State
}

// NewCommandModeController creates a controller
func NewCommandModeController(
	transport protocol.Transport,
	reader *ResponseReader,
	clock Clock,
	timing config.TimingConfig,
	ack AckMatcher,
	logger *utils.RadioLogger,
) *CommandModeController {
	return &CommandModeController{
		transport: transport,
		reader:    reader,
		clock:     clock,
		timing:    timing,
		ack:       ack,
		logger:    logger,
		state:     StateStreaming,
	}
}

// State returns the state reached by the last Enter
func (c *CommandModeController) State() State {
	return c.state
}

// Enter runs the escape procedure once. It reports false when the radio did not
// acknowledge; the error is only set for transport or context failures. Entering while
// already in command mode works because ATO drops back to transparent mode first.
func (c *CommandModeController) Enter(ctx context.Context) (bool, error) {
	c.state = StateStreaming

	if err := c.transport.Flush(); err != nil {
		c.state = StateFailed
		return false, fmt.Errorf("failed to flush transport: %w", err)
	}
	if err := c.clock.Sleep(ctx, c.timing.FlushSettle); err != nil {
		c.state = StateFailed
		return false, err
	}

	// The escape has to start on a fresh line
	steps := []struct {
		frame []byte
		wait  time.Duration
	}{
		{[]byte(LineTerminator), c.timing.NewlineSettle},
		{[]byte("AT" + AT_COMMANDS.EXIT_COMMAND + LineTerminator), c.timing.ExitSettle},
		{[]byte("AT" + AT_COMMANDS.IDENTIFY + LineTerminator), c.timing.EscapePreGuard},
	}
	for _, step := range steps {
		if err := c.send(ctx, step.frame); err != nil {
			c.state = StateFailed
			return false, err
		}
		if err := c.clock.Sleep(ctx, step.wait); err != nil {
			c.state = StateFailed
			return false, err
		}
	}

	if err := c.send(ctx, []byte(EscapeSequence)); err != nil {
		c.state = StateFailed
		return false, err
	}
	c.state = StateEscapePending
	if err := c.clock.Sleep(ctx, c.timing.EscapePostGuard); err != nil {
		c.state = StateFailed
		return false, err
	}

	response, err := c.reader.ReadResponse(ctx)
	if err != nil {
		c.state = StateFailed
		return false, err
	}

	acknowledged := c.ack.Acknowledged(response)
	c.logger.LogResponse(response, acknowledged)
	if !acknowledged {
		c.state = StateFailed
		c.logger.Debug("Radio did not enter command mode", zap.Int("baud_rate", c.transport.BaudRate()))
		return false, nil
	}

	c.state = StateCommandMode
	c.logger.Debug("Radio entered command mode", zap.Int("baud_rate", c.transport.BaudRate()))
	return true, nil
}

func (c *CommandModeController) send(ctx context.Context, frame []byte) error {
	c.logger.LogCommand(frame)
	if err := c.transport.Write(ctx, frame); err != nil {
		return fmt.Errorf("failed to send %q: %w", frame, err)
	}
	return nil
}
