package sik_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sik-config/internal/driver/sik"
	"sik-config/internal/model"
)

func TestFrames(t *testing.T) {
	assert.Equal(t, "ATI5\r\n", string(sik.BuildFrame(model.RoleLocal, sik.AT_COMMANDS.SHOW_PARAMETERS)))
	assert.Equal(t, "RT&W\r\n", string(sik.BuildFrame(model.RoleRemote, sik.AT_COMMANDS.PERSIST)))
	assert.Equal(t, "ATS3=30\r\n", string(sik.SetFrame(model.RoleLocal, 3, 30)))
	assert.Equal(t, "RTS1=57\r\n", string(sik.SetFrame(model.RoleRemote, 1, 57)))
}

func TestParameterEncode(t *testing.T) {
	tests := []struct {
		id       model.ParameterID
		value    int
		want     int
		wantCode model.ExitCode
	}{
		{model.ParamSerialSpeed, 57600, 57, 0},
		{model.ParamSerialSpeed, 2400, 2, 0},
		{model.ParamSerialSpeed, 115200, 115, 0},
		{model.ParamSerialSpeed, 1200, 0, model.ExitInvalidSerialSpeed},
		{model.ParamSerialSpeed, 0, 0, model.ExitInvalidSerialSpeed},
		{model.ParamAirSpeed, 128, 128, 0},
		{model.ParamAirSpeed, 4, 4, 0},
		{model.ParamAirSpeed, 100, 0, model.ExitInvalidAirSpeed},
		{model.ParamNetID, 0, 0, 0},
		{model.ParamNetID, 499, 499, 0},
		{model.ParamNetID, -1, 0, model.ExitInvalidNetID},
		{model.ParamNetID, 500, 0, model.ExitInvalidNetID},
		{model.ParamECC, 1, 1, 0},
		{model.ParamMAVLink, 0, 0, 0},
		{model.ParamOpResend, 2, 0, model.ExitInvalidToggle},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			got, err := sik.Parameters[tt.id].Encode(tt.value)
			if tt.wantCode == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrValidation))
			assert.Equal(t, tt.wantCode, model.ExitCodeOf(err))
		})
	}
}

func TestParameterRegisters(t *testing.T) {
	want := map[model.ParameterID]int{
		model.ParamSerialSpeed: 1,
		model.ParamAirSpeed:    2,
		model.ParamNetID:       3,
		model.ParamECC:         5,
		model.ParamMAVLink:     6,
		model.ParamOpResend:    7,
	}

	require.Len(t, sik.Parameters, len(model.ParameterOrder))
	for id, register := range want {
		assert.Equal(t, register, sik.Parameters[id].Register, id)
	}
}

func TestRejectedExitCode(t *testing.T) {
	tests := []struct {
		id    model.ParameterID
		value int
		want  model.ExitCode
	}{
		{model.ParamSerialSpeed, 57600, model.ExitSerialSpeedRejected},
		{model.ParamAirSpeed, 64, model.ExitAirSpeedRejected},
		{model.ParamNetID, 0, model.ExitNetIDRejected},
		{model.ParamECC, 1, model.ExitECCEnableRejected},
		{model.ParamECC, 0, model.ExitECCDisableRejected},
		{model.ParamMAVLink, 1, model.ExitMAVLinkEnableRejected},
		{model.ParamMAVLink, 0, model.ExitMAVLinkDisableRejected},
		{model.ParamOpResend, 1, model.ExitOpResendEnableRejected},
		{model.ParamOpResend, 0, model.ExitOpResendDisableRejected},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sik.Parameters[tt.id].RejectedExitCode(tt.value), "%s=%d", tt.id, tt.value)
	}
}

func TestParameterAction(t *testing.T) {
	assert.Equal(t, "enable MAVLink framing", sik.Parameters[model.ParamMAVLink].Action(1))
	assert.Equal(t, "disable error correcting code", sik.Parameters[model.ParamECC].Action(0))
	assert.Equal(t, "set network ID to 30", sik.Parameters[model.ParamNetID].Action(30))
}
