// internal/driver/sik/engine.go
package sik

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sik-config/internal/config"
	"sik-config/internal/model"
	"sik-config/internal/protocol"
	"sik-config/internal/utils"
)

// ApplyResult reports what Apply changed on the radio
type ApplyResult struct {
	Applied        []model.Setting
	Persisted      bool
	PersistWarning bool
	Rebooted       bool
}

// Engine issues parameter commands to a radio that is already in command mode
type Engine struct {
	transport protocol.Transport
	reader    *ResponseReader
	clock     Clock
	timing    config.TimingConfig
	ack       AckMatcher
	role      model.RadioRole
	logger    *utils.RadioLogger
}

// NewEngine creates a parameter-set engine
func NewEngine(
	transport protocol.Transport,
	reader *ResponseReader,
	clock Clock,
	timing config.TimingConfig,
	ack AckMatcher,
	role model.RadioRole,
	logger *utils.RadioLogger,
) *Engine {
	return &Engine{
		transport: transport,
		reader:    reader,
		clock:     clock,
		timing:    timing,
		ack:       ack,
		role:      role,
		logger:    logger,
	}
}

// ShowParameters queries the EEPROM parameter dump and returns it verbatim
func (e *Engine) ShowParameters(ctx context.Context) (string, error) {
	e.logger.Debug("Getting parameters")

	response, err := e.exchange(ctx, BuildFrame(e.role, AT_COMMANDS.SHOW_PARAMETERS))
	if err != nil {
		return "", err
	}
	return response, nil
}

// Apply sends each requested setting in model.ParameterOrder. Values are validated just
// before their command is sent, so a bad value aborts after earlier settings were already
// accepted. Those earlier settings are neither rolled back nor persisted. When at least
// one setting was accepted the registers are written to EEPROM and the radio rebooted.
func (e *Engine) Apply(ctx context.Context, req *model.SettingRequest) (*ApplyResult, error) {
	result := &ApplyResult{}
	if req.IsEmpty() {
		e.logger.Info("No settings requested, leaving EEPROM untouched")
		return result, nil
	}

	for _, id := range model.ParameterOrder {
		value, ok := req.Lookup(id)
		if !ok {
			continue
		}

		def, ok := Parameters[id]
		if !ok {
			return result, fmt.Errorf("no definition for parameter %s", id)
		}

		encoded, err := def.Encode(value)
		if err != nil {
			e.logger.Error("Invalid setting", zap.String("parameter", string(id)), zap.Int("value", value))
			return result, err
		}

		e.logger.Info("Applying setting",
			zap.String("parameter", string(id)),
			zap.String("action", def.Action(value)),
		)

		response, err := e.exchange(ctx, SetFrame(e.role, def.Register, encoded))
		if err != nil {
			return result, err
		}

		if !e.ack.Acknowledged(response) {
			e.logger.LogResponse(response, false)
			return result, model.NewUnacknowledgedError(id, def.RejectedExitCode(value), response)
		}
		e.logger.LogResponse(response, true)

		result.Applied = append(result.Applied, model.Setting{Parameter: id, Value: value})
	}

	if err := e.persist(ctx, result); err != nil {
		return result, err
	}

	// The radio may drop the link while rebooting, so no reply is read
	if err := e.send(ctx, BuildFrame(e.role, AT_COMMANDS.REBOOT)); err != nil {
		return result, err
	}
	result.Rebooted = true

	return result, nil
}

// persist writes the registers to EEPROM. A missing acknowledgement only warns because
// the reboot is attempted regardless.
func (e *Engine) persist(ctx context.Context, result *ApplyResult) error {
	response, err := e.exchange(ctx, BuildFrame(e.role, AT_COMMANDS.PERSIST))
	if err != nil {
		return err
	}

	if !e.ack.Acknowledged(response) {
		result.PersistWarning = true
		e.logger.Warn("Radio did not acknowledge EEPROM write",
			zap.String("response", response),
		)
		return nil
	}

	result.Persisted = true
	return nil
}

// exchange sends a frame, waits for the radio to process it and reads the reply
func (e *Engine) exchange(ctx context.Context, frame []byte) (string, error) {
	if err := e.send(ctx, frame); err != nil {
		return "", err
	}

	if err := e.clock.Sleep(ctx, e.timing.CommandSettle); err != nil {
		return "", err
	}

	return e.reader.ReadResponse(ctx)
}

func (e *Engine) send(ctx context.Context, frame []byte) error {
	e.logger.LogCommand(frame)
	if err := e.transport.Write(ctx, frame); err != nil {
		return fmt.Errorf("failed to send %q: %w", frame, err)
	}
	return nil
}
