package sik_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sik-config/internal/config"
	"sik-config/internal/driver/sik"
	"sik-config/internal/model"
	"sik-config/internal/protocol"
)

func TestEnter_Success(t *testing.T) {
	h := newHarness(t, sik.Options{})
	require.NoError(t, h.radio.Open(context.Background()))

	ok, err := h.sik.CommandMode.Enter(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sik.StateCommandMode, h.sik.CommandMode.State())
	assert.True(t, h.radio.InCommandMode())

	assert.Equal(t, []string{"\r\n", "ATO\r\n", "ATI\r\n", "+++"}, h.radio.Frames())
	assert.Equal(t, []time.Duration{
		time.Second,            // flush
		500 * time.Millisecond, // newline
		time.Second,            // ATO
		2 * time.Second,        // guard before +++
		2 * time.Second,        // guard after +++
		2 * time.Second,        // response settle
	}, h.clock.Sleeps())
}

func TestEnter_UsesATPrefixForRemoteRole(t *testing.T) {
	h := newHarness(t, sik.Options{Role: model.RoleRemote})
	h.enterCommandMode(t)

	assert.Equal(t, []string{"\r\n", "ATO\r\n", "ATI\r\n", "+++"}, h.radio.Frames())
}

func TestEnter_Twice(t *testing.T) {
	h := newHarness(t, sik.Options{})
	h.enterCommandMode(t)

	ok, err := h.sik.CommandMode.Enter(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, h.radio.InCommandMode())
}

func TestEnter_WrongBaud(t *testing.T) {
	h := newHarness(t, sik.Options{})
	require.NoError(t, h.radio.SetBaudRate(9600))
	require.NoError(t, h.radio.Open(context.Background()))

	ok, err := h.sik.CommandMode.Enter(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, sik.StateFailed, h.sik.CommandMode.State())
	assert.False(t, h.radio.InCommandMode())
}

func TestEnter_GuardTimes(t *testing.T) {
	tests := []struct {
		name   string
		adjust func(*config.TimingConfig)
		want   bool
	}{
		{"baseline", func(*config.TimingConfig) {}, true},
		{"minimum guards", func(c *config.TimingConfig) {
			c.EscapePreGuard = config.MinEscapeGuard
			c.EscapePostGuard = config.MinEscapeGuard
		}, true},
		{"short pre guard", func(c *config.TimingConfig) { c.EscapePreGuard = 500 * time.Millisecond }, false},
		{"short post guard", func(c *config.TimingConfig) { c.EscapePostGuard = 500 * time.Millisecond }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timing := config.DefaultTiming()
			tt.adjust(&timing)
			h := newHarness(t, sik.Options{Timing: timing})
			require.NoError(t, h.radio.Open(context.Background()))

			ok, err := h.sik.CommandMode.Enter(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestEnter_StrictAck(t *testing.T) {
	tests := []struct {
		name      string
		ackFormat string
		strict    bool
		want      bool
	}{
		{"plain ok, substring", "OK", false, true},
		{"plain ok, strict", "OK", true, false},
		{"indexed ok, strict", "[1] OK", true, true},
		{"indexed ok, substring", "[1] OK", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, sik.Options{StrictAck: tt.strict})
			h.radio.AckFormat = tt.ackFormat
			require.NoError(t, h.radio.Open(context.Background()))

			ok, err := h.sik.CommandMode.Enter(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestEnter_ClosedTransport(t *testing.T) {
	h := newHarness(t, sik.Options{})

	ok, err := h.sik.CommandMode.Enter(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, protocol.ErrNotOpen)
	assert.Equal(t, sik.StateFailed, h.sik.CommandMode.State())
}

func TestEnter_ContextCancelled(t *testing.T) {
	h := newHarness(t, sik.Options{})
	require.NoError(t, h.radio.Open(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := h.sik.CommandMode.Enter(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}
