package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRolePrefix(t *testing.T) {
	assert.Equal(t, "AT", RoleLocal.Prefix())
	assert.Equal(t, "RT", RoleRemote.Prefix())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    RadioRole
		wantErr bool
	}{
		{"", RoleLocal, false},
		{"local", RoleLocal, false},
		{"LOCAL", RoleLocal, false},
		{"remote", RoleRemote, false},
		{"REMOTE", RoleRemote, false},
		{"both", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSerialSpeeds(t *testing.T) {
	assert.Equal(t, []int{2400, 4800, 9600, 19200, 38400, 57600, 115200}, SerialSpeeds())

	code, ok := SerialSpeedCode(57600)
	assert.True(t, ok)
	assert.Equal(t, 57, code)

	_, ok = SerialSpeedCode(1200)
	assert.False(t, ok)
	assert.False(t, IsValidSerialSpeed(0))
	assert.True(t, IsValidSerialSpeed(2400))
}

func TestDomainBoundaries(t *testing.T) {
	assert.True(t, IsValidNetID(0))
	assert.True(t, IsValidNetID(499))
	assert.False(t, IsValidNetID(-1))
	assert.False(t, IsValidNetID(500))

	assert.True(t, IsValidAirSpeed(128))
	assert.True(t, IsValidAirSpeed(250))
	assert.False(t, IsValidAirSpeed(100))
	assert.False(t, IsValidAirSpeed(0))
}

func TestSettingRequest(t *testing.T) {
	var empty *SettingRequest
	assert.True(t, empty.IsEmpty())
	_, ok := empty.Lookup(ParamNetID)
	assert.False(t, ok)

	req := &SettingRequest{}
	req.Set(ParamNetID, 10)
	req.Set(ParamNetID, 20)
	req.SetToggle(ParamECC, false)
	req.SetToggle(ParamMAVLink, true)

	assert.False(t, req.IsEmpty())
	assert.Len(t, req.Settings, 3)

	v, ok := req.Lookup(ParamNetID)
	assert.True(t, ok)
	assert.Equal(t, 20, v)

	v, _ = req.Lookup(ParamECC)
	assert.Equal(t, 0, v)
	v, _ = req.Lookup(ParamMAVLink)
	assert.Equal(t, 1, v)

	_, ok = req.Lookup(ParamAirSpeed)
	assert.False(t, ok)
}
