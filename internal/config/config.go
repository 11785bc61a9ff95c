// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sik-config/internal/model"
)

// Version is reported by --version
const Version = "v0.1.0"

// DefaultSerialPort is the radio UART on the Reach/Edison image
const DefaultSerialPort = "/dev/ttyMFD2"

// Config represents the application configuration
type Config struct {
	Serial   SerialConfig   `mapstructure:"serial"`
	Radio    RadioConfig    `mapstructure:"radio"`
	Settings SettingsConfig `mapstructure:"settings"`
	Timing   TimingConfig   `mapstructure:"timing"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	App      AppConfig      `mapstructure:"app"`
}

// SerialConfig represents serial port configuration
type SerialConfig struct {
	Port     string `mapstructure:"port" validate:"required"`
	BaudRate int    `mapstructure:"baud_rate"`
	DataBits int    `mapstructure:"data_bits"`
	StopBits int    `mapstructure:"stop_bits"`
	Parity   string `mapstructure:"parity"`
}

// RadioConfig selects the target radio and how replies are judged
type RadioConfig struct {
	Role      string `mapstructure:"role"`
	StrictAck bool   `mapstructure:"strict_ack"`
}

// SettingsConfig holds the requested parameter changes. Nil means "not requested".
// Toggles hold 1 or 0 when well formed; anything else is kept so the radio driver
// rejects it with ExitInvalidToggle.
type SettingsConfig struct {
	SerialSpeed *int `mapstructure:"serial_speed"`
	AirSpeed    *int `mapstructure:"air_speed"`
	NetID       *int `mapstructure:"netid"`
	ECC         *int `mapstructure:"-"`
	MAVLink     *int `mapstructure:"-"`
	OpResend    *int `mapstructure:"-"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"required"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Load builds the configuration from defaults, an optional YAML file, SIKCONFIG_*
// environment variables and the command line flags in fs, in increasing precedence.
func Load(configFile string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Environment variable support
	v.SetEnvPrefix("SIKCONFIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, fmt.Errorf("unable to bind flags: %w", err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Only keys that were actually set count as requested settings
	config.Settings = SettingsConfig{}
	if v.IsSet("settings.serial_speed") {
		config.Settings.SerialSpeed = intPtr(v.GetInt("settings.serial_speed"))
	}
	if v.IsSet("settings.air_speed") {
		config.Settings.AirSpeed = intPtr(v.GetInt("settings.air_speed"))
	}
	if v.IsSet("settings.netid") {
		config.Settings.NetID = intPtr(v.GetInt("settings.netid"))
	}
	if v.IsSet("settings.ecc") {
		config.Settings.ECC = intPtr(toggleValue(v.Get("settings.ecc")))
	}
	if v.IsSet("settings.mavlink") {
		config.Settings.MAVLink = intPtr(toggleValue(v.Get("settings.mavlink")))
	}
	if v.IsSet("settings.op_resend") {
		config.Settings.OpResend = intPtr(toggleValue(v.Get("settings.op_resend")))
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// invalidToggle stands in for toggle values that are not numbers at all
const invalidToggle = -1

// toggleValue maps true/false and 1/0 (native or as strings) onto 1/0. Other numbers are
// returned unchanged and anything unparseable becomes invalidToggle.
func toggleValue(raw interface{}) int {
	switch v := raw.(type) {
	case nil:
		return invalidToggle
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return 1
		case "false":
			return 0
		}
	}

	n, err := cast.ToIntE(raw)
	if err != nil {
		return invalidToggle
	}
	return n
}

// flagKeys maps command line flags onto configuration keys
var flagKeys = map[string]string{
	"port":         "serial.port",
	"baud":         "serial.baud_rate",
	"strict-ack":   "radio.strict_ack",
	"serial-speed": "settings.serial_speed",
	"adr":          "settings.air_speed",
	"netid":        "settings.netid",
}

// toggleFlags maps paired on/off flags onto boolean setting keys
var toggleFlags = []struct {
	on, off, key string
}{
	{"ecc-on", "ecc-off", "settings.ecc"},
	{"mavlink-on", "mavlink-off", "settings.mavlink"},
	{"or-on", "or-off", "settings.op_resend"},
}

// ErrConflictingFlags is returned when both halves of an on/off pair or both roles are given
var ErrConflictingFlags = errors.New("conflicting flags")

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	for _, t := range toggleFlags {
		on, off := flagChanged(fs, t.on), flagChanged(fs, t.off)
		switch {
		case on && off:
			return fmt.Errorf("%w: --%s and --%s", ErrConflictingFlags, t.on, t.off)
		case on:
			v.Set(t.key, true)
		case off:
			v.Set(t.key, false)
		}
	}

	local, remote := flagChanged(fs, "local"), flagChanged(fs, "remote")
	switch {
	case local && remote:
		return fmt.Errorf("%w: --local and --remote", ErrConflictingFlags)
	case remote:
		v.Set("radio.role", "remote")
	case local:
		v.Set("radio.role", "local")
	}

	if flagChanged(fs, "verbose") {
		v.Set("logging.level", "debug")
	}

	return nil
}

func flagChanged(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	return f != nil && f.Changed
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Serial defaults
	v.SetDefault("serial.port", DefaultSerialPort)
	v.SetDefault("serial.baud_rate", 0)
	v.SetDefault("serial.data_bits", 8)
	v.SetDefault("serial.stop_bits", 1)
	v.SetDefault("serial.parity", "none")

	// Radio defaults
	v.SetDefault("radio.role", "local")
	v.SetDefault("radio.strict_ack", false)

	// Timing defaults
	baseline := DefaultTiming()
	v.SetDefault("timing.flush_settle", baseline.FlushSettle)
	v.SetDefault("timing.newline_settle", baseline.NewlineSettle)
	v.SetDefault("timing.exit_settle", baseline.ExitSettle)
	v.SetDefault("timing.escape_pre_guard", baseline.EscapePreGuard)
	v.SetDefault("timing.escape_post_guard", baseline.EscapePostGuard)
	v.SetDefault("timing.response_settle", baseline.ResponseSettle)
	v.SetDefault("timing.command_settle", baseline.CommandSettle)
	v.SetDefault("timing.post_entry_settle", baseline.PostEntrySettle)
	v.SetDefault("timing.max_drain_rounds", baseline.MaxDrainRounds)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// App defaults
	v.SetDefault("app.name", "sikconfig")
	v.SetDefault("app.version", Version)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Serial.Port == "" {
		return fmt.Errorf("serial.port is required")
	}

	if _, err := model.ParseRole(config.Radio.Role); err != nil {
		return fmt.Errorf("radio.role: %w", err)
	}

	// Validate logging level
	validLevels := []string{"debug", "info", "warn", "error"}
	isValidLevel := false
	for _, level := range validLevels {
		if config.Logging.Level == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	switch config.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console")
	}

	if err := config.Timing.Validate(); err != nil {
		return fmt.Errorf("timing: %w", err)
	}

	return nil
}

// RunRequest converts the configuration into the request consumed by the radio service
func (c *Config) RunRequest(op model.OperationType) *model.RunRequest {
	role, _ := model.ParseRole(c.Radio.Role)

	req := &model.RunRequest{
		OperationType: op,
		Serial: model.SerialSettings{
			Port:     c.Serial.Port,
			BaudRate: c.Serial.BaudRate,
		},
		Role: role,
	}

	s := c.Settings
	if s.SerialSpeed != nil {
		req.Settings.Set(model.ParamSerialSpeed, *s.SerialSpeed)
	}
	if s.AirSpeed != nil {
		req.Settings.Set(model.ParamAirSpeed, *s.AirSpeed)
	}
	if s.NetID != nil {
		req.Settings.Set(model.ParamNetID, *s.NetID)
	}
	if s.ECC != nil {
		req.Settings.Set(model.ParamECC, *s.ECC)
	}
	if s.MAVLink != nil {
		req.Settings.Set(model.ParamMAVLink, *s.MAVLink)
	}
	if s.OpResend != nil {
		req.Settings.Set(model.ParamOpResend, *s.OpResend)
	}

	return req
}

// IsDebugEnabled checks if debug logging is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.Logging.Level == "debug"
}

func intPtr(v int) *int { return &v }
