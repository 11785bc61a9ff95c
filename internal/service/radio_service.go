// internal/service/radio_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sik-config/internal/config"
	"sik-config/internal/driver/sik"
	"sik-config/internal/model"
	"sik-config/internal/protocol"
	"sik-config/internal/utils"
)

// TransportFactory creates the transport for a run
type TransportFactory func(config protocol.SerialConfig, logger *zap.Logger) (protocol.Transport, error)

// Dependencies replaces the defaults a RadioService uses to reach the radio.
// Zero fields keep the defaults.
type Dependencies struct {
	NewTransport TransportFactory
	Clock        sik.Clock
}

// RadioService runs one configuration session against a radio
type RadioService struct {
	config       *config.Config
	logger       *utils.ServiceLogger
	newTransport TransportFactory
	clock        sik.Clock
}

// NewRadioService creates a new radio service instance
func NewRadioService(cfg *config.Config, deps Dependencies, logger *zap.Logger) *RadioService {
	s := &RadioService{
		config:       cfg,
		logger:       utils.NewServiceLogger(logger, "radio-service"),
		newTransport: protocol.CreateTransport,
		clock:        sik.RealClock{},
	}
	if deps.NewTransport != nil {
		s.newTransport = deps.NewTransport
	}
	if deps.Clock != nil {
		s.clock = deps.Clock
	}
	return s
}

// Run acquires the transport, brings the radio into command mode (probing the baud rate
// when none is given) and performs the requested operation. The transport is closed
// before Run returns, whatever the outcome. The result is returned even on failure so
// callers can report partially applied settings.
func (s *RadioService) Run(ctx context.Context, req *model.RunRequest) (*model.RunResult, error) {
	result := model.NewRunResult(req)

	opLogger := utils.NewOperationLogger(s.logger.Logger, string(req.OperationType), result.ID.String())
	opLogger.Start(
		zap.String("port", req.Serial.Port),
		zap.Int("baud_rate", req.Serial.BaudRate),
		zap.String("role", string(req.Role)),
	)

	result.Status = model.OperationStatusProcessing
	err := s.execute(ctx, req, result, opLogger.Logger())
	result.Complete(err)

	if err != nil {
		opLogger.Error(err, zap.Int("exit_code", int(model.ExitCodeOf(err))))
		return result, err
	}

	opLogger.Success(
		zap.Int("baud_rate", result.BaudRate),
		zap.Int("applied", len(result.Applied)),
	)
	return result, nil
}

func (s *RadioService) execute(ctx context.Context, req *model.RunRequest, result *model.RunResult, logger *zap.Logger) error {
	switch req.OperationType {
	case model.OperationTypeProbeBaud, model.OperationTypeShowParameters, model.OperationTypeApplySettings:
	default:
		return &model.RadioError{
			Kind: model.KindUsage,
			Code: model.ExitUsage,
			Err:  fmt.Errorf("unknown operation type %q", req.OperationType),
		}
	}

	baud := req.Serial.BaudRate
	if baud != 0 && !model.IsValidSerialSpeed(baud) {
		return &model.RadioError{
			Kind: model.KindValidation,
			Code: model.ExitInvalidBaud,
			Err:  fmt.Errorf("unsupported baud rate %d, expected one of %v", baud, model.SerialSpeeds()),
		}
	}

	transport, err := s.newTransport(protocol.SerialConfig{
		Port:     req.Serial.Port,
		BaudRate: baud,
		DataBits: s.config.Serial.DataBits,
		StopBits: s.config.Serial.StopBits,
		Parity:   s.config.Serial.Parity,
	}, logger)
	if err != nil {
		return model.NewConnectionError(err)
	}
	defer func() {
		if err := transport.Close(); err != nil {
			logger.Warn("Failed to close transport", zap.Error(err))
		}
	}()

	radio := sik.NewRadio(transport, req.Serial.Port, sik.Options{
		Role:      req.Role,
		Timing:    s.config.Timing,
		StrictAck: s.config.Radio.StrictAck,
		Clock:     s.clock,
	}, logger)

	if baud == 0 {
		candidates := radio.Prober.Candidates()
		logger.Info("Testing serial port baud rates",
			zap.Ints("candidates", candidates),
			zap.Duration("max_duration", time.Duration(len(candidates))*s.config.Timing.EntryDuration()),
		)
		rate, err := radio.Prober.Probe(ctx)
		if err != nil {
			return err
		}
		baud = rate
		result.Probed = true
		logger.Info("Detected baud rate", zap.Int("baud_rate", baud))
	} else {
		if err := s.enter(ctx, radio, baud); err != nil {
			return err
		}
	}
	result.BaudRate = baud

	if req.OperationType == model.OperationTypeProbeBaud {
		return nil
	}

	if err := transport.Flush(); err != nil {
		return fmt.Errorf("failed to flush transport: %w", err)
	}
	if err := s.clock.Sleep(ctx, s.config.Timing.PostEntrySettle); err != nil {
		return err
	}

	if req.OperationType == model.OperationTypeShowParameters {
		parameters, err := radio.Engine.ShowParameters(ctx)
		if err != nil {
			return err
		}
		result.Parameters = parameters
		return nil
	}

	applied, err := radio.Engine.Apply(ctx, &req.Settings)
	if applied != nil {
		result.Applied = applied.Applied
		result.Persisted = applied.Persisted
		result.PersistWarning = applied.PersistWarning
		result.Rebooted = applied.Rebooted
	}
	return err
}

// enter opens the transport at a known rate and enters command mode
func (s *RadioService) enter(ctx context.Context, radio *sik.Radio, baud int) error {
	if err := radio.Transport.Open(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		radio.Logger.LogConnection("open", baud, err)
		return model.NewConnectionError(err)
	}
	radio.Logger.LogConnection("open", baud, nil)

	ok, err := radio.CommandMode.Enter(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return &model.RadioError{
			Kind: model.KindCommandMode,
			Code: model.ExitCommandModeFailed,
			Err:  fmt.Errorf("no acknowledgement at %d baud", baud),
		}
	}
	return nil
}
