package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"sik-config/internal/config"
)

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sikconfig.log")

	logger, err := NewLogger(&config.LoggingConfig{
		Level:      "debug",
		Format:     "json",
		Output:     path,
		MaxSize:    1,
		MaxBackups: 1,
	})
	require.NoError(t, err)

	logger.Debug("radio probed", zap.Int("baud_rate", 57600))
	require.NoError(t, CloseLogger(logger))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"radio probed"`)
	assert.Contains(t, string(data), `"baud_rate":57600`)
}

func TestNewLogger_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		_, err := NewLogger(&config.LoggingConfig{Level: level, Output: "stderr"})
		assert.NoError(t, err, level)
	}

	_, err := NewLogger(&config.LoggingConfig{Level: "trace", Output: "stderr"})
	assert.Error(t, err)
}

func TestRadioLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rl := NewRadioLogger(zap.New(core), "/dev/ttyUSB0", "LOCAL")

	rl.LogCommand([]byte("+++"))
	rl.LogResponse("OK\r\n", true)
	rl.LogConnection("open", 57600, errors.New("busy"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)

	assert.Equal(t, `"+++"`, entries[0].ContextMap()["frame"])
	assert.Equal(t, "/dev/ttyUSB0", entries[0].ContextMap()["port"])
	assert.Equal(t, `"OK\r\n"`, entries[1].ContextMap()["response"])
	assert.Equal(t, true, entries[1].ContextMap()["acknowledged"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
}

func TestOperationLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ol := NewOperationLogger(zap.New(core), "SHOW_PARAMETERS", "run-1")

	ol.Start()
	ol.Success(zap.Int("baud_rate", 57600))
	ol.Error(errors.New("radio silent"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, "run-1", entries[0].ContextMap()["operation_id"])
	assert.Equal(t, true, entries[1].ContextMap()["success"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "radio silent", entries[2].ContextMap()["error"])
}
