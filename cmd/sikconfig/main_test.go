package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sik-config/internal/config"
	"sik-config/internal/model"
)

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want model.ExitCode
	}{
		{"help", []string{"--help"}, model.ExitOK},
		{"unknown flag", []string{"--frobnicate"}, model.ExitUsage},
		{"positional argument", []string{"extra"}, model.ExitUsage},
		{"conflicting toggles", []string{"--ecc-on", "--ecc-off"}, model.ExitUsage},
		{"both roles", []string{"-l", "-r"}, model.ExitUsage},
		{"invalid baud", []string{"-b", "1234", "--netid", "5"}, model.ExitInvalidBaud},
		{"missing config file", []string{"--config", "/nonexistent/sikconfig.yaml"}, model.ExitFailure},
		{"port cannot be opened", []string{"-p", "/dev/does-not-exist-sikconfig", "-b", "57600", "-t"}, model.ExitPortOpenFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			got := run(context.Background(), tt.args, &stdout, &stderr)
			assert.Equal(t, tt.want, got, stderr.String())
		})
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"--version"}, &stdout, &stderr)
	assert.Equal(t, model.ExitOK, code)
	assert.Equal(t, config.Version+"\n", stdout.String())
}

func TestOperationFor(t *testing.T) {
	tests := []struct {
		args []string
		want model.OperationType
	}{
		{nil, model.OperationTypeApplySettings},
		{[]string{"--netid", "4"}, model.OperationTypeApplySettings},
		{[]string{"--show-parameters", "--netid", "4"}, model.OperationTypeShowParameters},
		{[]string{"-t", "--show-parameters"}, model.OperationTypeProbeBaud},
	}

	for _, tt := range tests {
		fs := newFlagSet(&bytes.Buffer{})
		require.NoError(t, fs.Parse(tt.args))
		assert.Equal(t, tt.want, operationFor(fs), "%v", tt.args)
	}
}
