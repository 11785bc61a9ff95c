package sik_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sik-config/internal/config"
	"sik-config/internal/driver/sik"
	"sik-config/internal/driver/sik/fake"
	"sik-config/internal/model"
	"sik-config/internal/utils"
)

const linkBaud = 57600

type harness struct {
	clock *fake.Clock
	radio *fake.Radio
	sik   *sik.Radio
}

func newHarness(t *testing.T, opts sik.Options) *harness {
	t.Helper()

	clock := fake.NewClock()
	radio := fake.NewRadio(clock, linkBaud)
	if opts.Timing == (config.TimingConfig{}) {
		opts.Timing = config.DefaultTiming()
	}
	opts.Clock = clock

	return &harness{
		clock: clock,
		radio: radio,
		sik:   sik.NewRadio(radio, "/dev/ttyFAKE0", opts, zap.NewNop()),
	}
}

// enterCommandMode opens the link at the radio's baud and enters its AT shell
func (h *harness) enterCommandMode(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, h.radio.Open(ctx))
	ok, err := h.sik.CommandMode.Enter(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func nopRadioLogger() *utils.RadioLogger {
	return utils.NewRadioLogger(zap.NewNop(), "/dev/ttyFAKE0", string(model.RoleLocal))
}
