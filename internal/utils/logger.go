// internal/utils/logger.go
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"sik-config/internal/config"
)

var logLevels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// LoggerManager builds the process logger from LoggingConfig
type LoggerManager struct {
	logger *zap.Logger
	config *config.LoggingConfig
}

// NewLogger creates a new logger instance based on configuration
func NewLogger(cfg *config.LoggingConfig) (*zap.Logger, error) {
	manager := &LoggerManager{config: cfg}

	level, ok := logLevels[cfg.Level]
	if !ok {
		return nil, fmt.Errorf("failed to create logger: invalid log level: %q", cfg.Level)
	}

	sink, err := manager.sink()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	options := []zap.Option{zap.AddCaller()}
	if level == zapcore.DebugLevel {
		// Verbose runs trace every frame; stack traces help pin the failing step
		options = append(options, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	manager.logger = zap.New(zapcore.NewCore(manager.encoder(), sink, level), options...)
	return manager.logger, nil
}

// encoder returns a JSON encoder for machine consumption, otherwise a terse console
// encoder suited to an interactive terminal
func (lm *LoggerManager) encoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.MessageKey = "message"

	if lm.config.Format == "json" {
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(encoderConfig)
	}

	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.CallerKey = zapcore.OmitKey
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// sink resolves logging.output. Stdout carries the tool's results, so logs default to
// stderr; any other value is a file rotated by lumberjack.
func (lm *LoggerManager) sink() (zapcore.WriteSyncer, error) {
	switch lm.config.Output {
	case "", "stderr":
		return zapcore.Lock(os.Stderr), nil
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	}

	if err := os.MkdirAll(filepath.Dir(lm.config.Output), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   lm.config.Output,
		MaxSize:    lm.config.MaxSize, // MB
		MaxBackups: lm.config.MaxBackups,
		MaxAge:     lm.config.MaxAge, // days
		Compress:   lm.config.Compress,
	}), nil
}

// RadioLogger tags entries with the port and role of the radio being configured
type RadioLogger struct {
	*zap.Logger
	port string
	role string
}

// NewRadioLogger creates a radio-specific logger
func NewRadioLogger(baseLogger *zap.Logger, port, role string) *RadioLogger {
	return &RadioLogger{
		Logger: baseLogger.With(
			zap.String("port", port),
			zap.String("role", role),
			zap.String("component", "radio"),
		),
		port: port,
		role: role,
	}
}

// LogCommand logs a frame sent to the radio. Line terminators are quoted so the
// unterminated escape sequence is distinguishable from a command.
func (rl *RadioLogger) LogCommand(frame []byte) {
	rl.Debug("Sent command", zap.String("frame", strconv.Quote(string(frame))))
}

// LogResponse logs text read back from the radio
func (rl *RadioLogger) LogResponse(response string, acknowledged bool) {
	rl.Debug("Radio response",
		zap.String("response", strconv.Quote(response)),
		zap.Bool("acknowledged", acknowledged),
	)
}

// LogConnection logs port open/close attempts; failures are warnings because a probe
// may still succeed elsewhere
func (rl *RadioLogger) LogConnection(action string, baudRate int, err error) {
	fields := []zap.Field{
		zap.String("action", action),
		zap.Int("baud_rate", baudRate),
		zap.Bool("success", err == nil),
	}

	if err != nil {
		rl.Warn("Radio connection event", append(fields, zap.Error(err))...)
		return
	}
	rl.Debug("Radio connection event", fields...)
}

// OperationLogger follows one run from start to completion
type OperationLogger struct {
	logger    *zap.Logger
	runID     string
	startTime time.Time
}

// NewOperationLogger creates an operation-specific logger
func NewOperationLogger(baseLogger *zap.Logger, operationType, runID string) *OperationLogger {
	return &OperationLogger{
		logger: baseLogger.With(
			zap.String("operation_type", operationType),
			zap.String("operation_id", runID),
			zap.String("component", "operation"),
		),
		runID:     runID,
		startTime: time.Now(),
	}
}

// Logger returns the underlying logger carrying the operation fields
func (ol *OperationLogger) Logger() *zap.Logger {
	return ol.logger
}

// Start logs operation start
func (ol *OperationLogger) Start(fields ...zap.Field) {
	ol.logger.Debug("Operation started", fields...)
}

// Success logs successful operation completion
func (ol *OperationLogger) Success(fields ...zap.Field) {
	ol.logger.Info("Operation completed successfully", ol.outcome(true, fields)...)
}

// Error logs operation failure
func (ol *OperationLogger) Error(err error, fields ...zap.Field) {
	ol.logger.Error("Operation failed", ol.outcome(false, append([]zap.Field{zap.Error(err)}, fields...))...)
}

func (ol *OperationLogger) outcome(success bool, fields []zap.Field) []zap.Field {
	return append([]zap.Field{
		zap.Duration("duration", time.Since(ol.startTime)),
		zap.Bool("success", success),
	}, fields...)
}

// ServiceLogger names the component emitting an entry
type ServiceLogger struct {
	*zap.Logger
	serviceName string
}

// NewServiceLogger creates a service-specific logger
func NewServiceLogger(baseLogger *zap.Logger, serviceName string) *ServiceLogger {
	return &ServiceLogger{
		Logger:      baseLogger.With(zap.String("service", serviceName)),
		serviceName: serviceName,
	}
}

// LogServiceStart logs startup with the effective configuration
func (sl *ServiceLogger) LogServiceStart(version string, config interface{}) {
	sl.Debug("Service starting",
		zap.String("version", version),
		zap.Any("config", config),
	)
}

// CloseLogger flushes buffered log entries
func CloseLogger(logger *zap.Logger) error {
	return logger.Sync()
}
