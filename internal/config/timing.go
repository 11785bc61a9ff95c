// internal/config/timing.go
package config

import (
	"fmt"
	"time"
)

// MinEscapeGuard is the shortest silence the radio firmware accepts around "+++"
const MinEscapeGuard = time.Second

// TimingConfig collects every fixed wait used while talking to the radio. The firmware has
// no ready signalling, so these margins are empirical
type TimingConfig struct {
	// Command-mode entry
	FlushSettle     time.Duration `mapstructure:"flush_settle"`
	NewlineSettle   time.Duration `mapstructure:"newline_settle"`
	ExitSettle      time.Duration `mapstructure:"exit_settle"`
	EscapePreGuard  time.Duration `mapstructure:"escape_pre_guard"`
	EscapePostGuard time.Duration `mapstructure:"escape_post_guard"`

	// Response draining
	ResponseSettle time.Duration `mapstructure:"response_settle"`
	MaxDrainRounds int           `mapstructure:"max_drain_rounds"`

	// Parameter commands
	CommandSettle   time.Duration `mapstructure:"command_settle"`
	PostEntrySettle time.Duration `mapstructure:"post_entry_settle"`
}

// DefaultTiming returns the baseline timing table
func DefaultTiming() TimingConfig {
	return TimingConfig{
		FlushSettle:     1 * time.Second,
		NewlineSettle:   500 * time.Millisecond,
		ExitSettle:      1 * time.Second,
		EscapePreGuard:  2 * time.Second,
		EscapePostGuard: 2 * time.Second,

		ResponseSettle: 2 * time.Second,
		MaxDrainRounds: 0, // unbounded

		CommandSettle:   2 * time.Second,
		PostEntrySettle: 1 * time.Second,
	}
}

// Validate checks the guard intervals the escape sequence depends on
func (t TimingConfig) Validate() error {
	if t.EscapePreGuard < MinEscapeGuard {
		return fmt.Errorf("escape_pre_guard must be at least %s, got %s", MinEscapeGuard, t.EscapePreGuard)
	}
	if t.EscapePostGuard < MinEscapeGuard {
		return fmt.Errorf("escape_post_guard must be at least %s, got %s", MinEscapeGuard, t.EscapePostGuard)
	}

	waits := map[string]time.Duration{
		"flush_settle":      t.FlushSettle,
		"newline_settle":    t.NewlineSettle,
		"exit_settle":       t.ExitSettle,
		"response_settle":   t.ResponseSettle,
		"command_settle":    t.CommandSettle,
		"post_entry_settle": t.PostEntrySettle,
	}
	for name, d := range waits {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}

	if t.MaxDrainRounds < 0 {
		return fmt.Errorf("max_drain_rounds must not be negative")
	}

	return nil
}

// EntryDuration is the minimum time one command-mode entry attempt takes, excluding the
// response drain
func (t TimingConfig) EntryDuration() time.Duration {
	return t.FlushSettle + t.NewlineSettle + t.ExitSettle + t.EscapePreGuard + t.EscapePostGuard
}
