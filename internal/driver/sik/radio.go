// internal/driver/sik/radio.go
package sik

import (
	"go.uber.org/zap"

	"sik-config/internal/config"
	"sik-config/internal/model"
	"sik-config/internal/protocol"
	"sik-config/internal/utils"
)

// Options configures a Radio
type Options struct {
	Role      model.RadioRole
	Timing    config.TimingConfig
	StrictAck bool
	Clock     Clock
}

// Radio bundles the protocol components sharing one transport
type Radio struct {
	Transport   protocol.Transport
	Reader      *ResponseReader
	CommandMode *CommandModeController
	Prober      *BaudProber
	Engine      *Engine
	Logger      *utils.RadioLogger
}

// NewRadio wires the reader, controller, prober and engine around transport
func NewRadio(transport protocol.Transport, port string, opts Options, logger *zap.Logger) *Radio {
	clock := opts.Clock
	if clock == nil {
		clock = RealClock{}
	}

	role := opts.Role
	if role == "" {
		role = model.RoleLocal
	}

	radioLogger := utils.NewRadioLogger(logger, port, string(role))
	ack := NewAckMatcher(opts.StrictAck)
	reader := NewResponseReader(transport, clock, opts.Timing.ResponseSettle, opts.Timing.MaxDrainRounds, radioLogger)
	commandMode := NewCommandModeController(transport, reader, clock, opts.Timing, ack, radioLogger)

	return &Radio{
		Transport:   transport,
		Reader:      reader,
		CommandMode: commandMode,
		Prober:      NewBaudProber(transport, commandMode, radioLogger),
		Engine:      NewEngine(transport, reader, clock, opts.Timing, ack, role, radioLogger),
		Logger:      radioLogger,
	}
}
