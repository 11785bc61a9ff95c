// internal/model/radio.go
package model

import (
	"fmt"
	"sort"
)

// RadioRole selects which radio of a linked pair receives the commands
type RadioRole string

const (
	RoleLocal  RadioRole = "LOCAL"
	RoleRemote RadioRole = "REMOTE"
)

// Prefix returns the two-letter command prefix for the role
func (r RadioRole) Prefix() string {
	if r == RoleRemote {
		return "RT"
	}
	return "AT"
}

// ParseRole parses a role name as used in configuration files
func ParseRole(s string) (RadioRole, error) {
	switch s {
	case "local", "LOCAL", "":
		return RoleLocal, nil
	case "remote", "REMOTE":
		return RoleRemote, nil
	default:
		return "", fmt.Errorf("unknown radio role: %q", s)
	}
}

// ParameterID names a user settable EEPROM parameter
type ParameterID string

const (
	ParamSerialSpeed ParameterID = "SERIAL_SPEED"
	ParamAirSpeed    ParameterID = "AIR_SPEED"
	ParamNetID       ParameterID = "NETID"
	ParamECC         ParameterID = "ECC"
	ParamMAVLink     ParameterID = "MAVLINK"
	ParamOpResend    ParameterID = "OP_RESEND"
)

// ParameterOrder is the order in which requested settings are applied
var ParameterOrder = []ParameterID{
	ParamSerialSpeed,
	ParamAirSpeed,
	ParamNetID,
	ParamECC,
	ParamMAVLink,
	ParamOpResend,
}

// serialSpeedCodes maps a serial baud rate to the compact code the radio stores
var serialSpeedCodes = map[int]int{
	2400:   2,
	4800:   4,
	9600:   9,
	19200:  19,
	38400:  38,
	57600:  57,
	115200: 115,
}

// AirSpeeds lists the valid air data rates in kbps
var AirSpeeds = []int{4, 8, 16, 24, 32, 64, 96, 128, 192, 250}

const (
	MinNetID = 0
	MaxNetID = 499
)

// SerialSpeeds returns the supported baud rates in ascending order
func SerialSpeeds() []int {
	speeds := make([]int, 0, len(serialSpeedCodes))
	for speed := range serialSpeedCodes {
		speeds = append(speeds, speed)
	}
	sort.Ints(speeds)
	return speeds
}

// IsValidSerialSpeed reports whether baud is one of the supported rates
func IsValidSerialSpeed(baud int) bool {
	_, ok := serialSpeedCodes[baud]
	return ok
}

// SerialSpeedCode returns the device code for a baud rate
func SerialSpeedCode(baud int) (int, bool) {
	code, ok := serialSpeedCodes[baud]
	return code, ok
}

// IsValidAirSpeed reports whether kbps is a supported air data rate
func IsValidAirSpeed(kbps int) bool {
	for _, s := range AirSpeeds {
		if s == kbps {
			return true
		}
	}
	return false
}

// IsValidNetID reports whether id lies in the inclusive NETID range
func IsValidNetID(id int) bool {
	return id >= MinNetID && id <= MaxNetID
}

// Setting is one requested parameter change. Toggles use 1 for enabled and 0 for disabled.
type Setting struct {
	Parameter ParameterID `json:"parameter" mapstructure:"parameter"`
	Value     int         `json:"value" mapstructure:"value"`
}

// SettingRequest is the ordered collection of changes for one run
type SettingRequest struct {
	Settings []Setting `json:"settings"`
}

// Set adds or replaces the requested value for a parameter
func (r *SettingRequest) Set(id ParameterID, value int) {
	for i := range r.Settings {
		if r.Settings[i].Parameter == id {
			r.Settings[i].Value = value
			return
		}
	}
	r.Settings = append(r.Settings, Setting{Parameter: id, Value: value})
}

// SetToggle records an enable/disable request
func (r *SettingRequest) SetToggle(id ParameterID, enabled bool) {
	if enabled {
		r.Set(id, 1)
		return
	}
	r.Set(id, 0)
}

// Lookup returns the requested value for a parameter, if any
func (r *SettingRequest) Lookup(id ParameterID) (int, bool) {
	if r == nil {
		return 0, false
	}
	for _, s := range r.Settings {
		if s.Parameter == id {
			return s.Value, true
		}
	}
	return 0, false
}

// IsEmpty reports whether nothing was requested
func (r *SettingRequest) IsEmpty() bool {
	return r == nil || len(r.Settings) == 0
}
