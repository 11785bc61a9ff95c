package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ExitCode
	}{
		{"nil", nil, ExitOK},
		{"plain error", errors.New("boom"), ExitFailure},
		{"connection", NewConnectionError(errors.New("busy")), ExitPortOpenFailed},
		{"wrapped validation", fmt.Errorf("run: %w", NewValidationError(ParamNetID, ExitInvalidNetID, 500)), ExitInvalidNetID},
		{"unacknowledged", NewUnacknowledgedError(ParamECC, ExitECCDisableRejected, "ERROR"), ExitECCDisableRejected},
		{"undetectable", &RadioError{Kind: KindUndetectable, Code: ExitBaudUndetectable}, ExitBaudUndetectable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeOf(tt.err))
		})
	}
}

func TestRadioErrorMatching(t *testing.T) {
	cause := errors.New("permission denied")
	err := fmt.Errorf("open: %w", NewConnectionError(cause))

	assert.True(t, errors.Is(err, ErrConnection))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrValidation))

	var radioErr *RadioError
	assert.True(t, errors.As(err, &radioErr))
	assert.Equal(t, KindConnection, radioErr.Kind)
}

func TestRadioErrorMessage(t *testing.T) {
	err := NewUnacknowledgedError(ParamNetID, ExitNetIDRejected, "ERROR\r\n")
	assert.Equal(t, "NETID UNACKNOWLEDGED: setting NETID failed", err.Error())

	err = NewValidationError(ParamAirSpeed, ExitInvalidAirSpeed, 100)
	assert.Equal(t, "AIR_SPEED VALIDATION: invalid value 100", err.Error())
}
