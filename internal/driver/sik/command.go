// internal/driver/sik/command.go
package sik

import (
	"fmt"

	"sik-config/internal/model"
)

const (
	// LineTerminator ends every command except the escape sequence
	LineTerminator = "\r\n"

	// EscapeSequence switches the radio from transparent mode into command mode.
	// It must be sent without a terminator, surrounded by guard silence.
	EscapeSequence = "+++"
)

// AT_COMMANDS contains the opcodes sent after the role prefix
var AT_COMMANDS = struct {
	IDENTIFY        string
	EXIT_COMMAND    string
	SHOW_PARAMETERS string
	PERSIST         string
	REBOOT          string
}{
	IDENTIFY:        "I",  // ATI
	EXIT_COMMAND:    "O",  // ATO
	SHOW_PARAMETERS: "I5", // ATI5
	PERSIST:         "&W", // AT&W
	REBOOT:          "Z",  // ATZ
}

// BuildFrame renders "<prefix><opcode>\r\n"
func BuildFrame(role model.RadioRole, opcode string) []byte {
	return []byte(role.Prefix() + opcode + LineTerminator)
}

// SetFrame renders "<prefix>S<register>=<value>\r\n"
func SetFrame(role model.RadioRole, register, value int) []byte {
	return []byte(fmt.Sprintf("%sS%d=%d%s", role.Prefix(), register, value, LineTerminator))
}

// ParameterDef describes how one setting is validated, encoded and reported
type ParameterDef struct {
	ID          model.ParameterID
	Register    int
	Description string
	Toggle      bool

	InvalidCode         model.ExitCode
	RejectedCode        model.ExitCode // toggles: enable rejected
	RejectedDisableCode model.ExitCode // toggles only

	encode func(value int) (int, bool)
}

// Parameters is the settings table keyed by parameter id
var Parameters = map[model.ParameterID]ParameterDef{
	model.ParamSerialSpeed: {
		ID:           model.ParamSerialSpeed,
		Register:     1,
		Description:  "serial speed",
		InvalidCode:  model.ExitInvalidSerialSpeed,
		RejectedCode: model.ExitSerialSpeedRejected,
		encode:       model.SerialSpeedCode,
	},
	model.ParamAirSpeed: {
		ID:           model.ParamAirSpeed,
		Register:     2,
		Description:  "air data rate",
		InvalidCode:  model.ExitInvalidAirSpeed,
		RejectedCode: model.ExitAirSpeedRejected,
		encode:       passThrough(model.IsValidAirSpeed),
	},
	model.ParamNetID: {
		ID:           model.ParamNetID,
		Register:     3,
		Description:  "network ID",
		InvalidCode:  model.ExitInvalidNetID,
		RejectedCode: model.ExitNetIDRejected,
		encode:       passThrough(model.IsValidNetID),
	},
	model.ParamECC: {
		ID:                  model.ParamECC,
		Register:            5,
		Description:         "error correcting code",
		Toggle:              true,
		InvalidCode:         model.ExitInvalidToggle,
		RejectedCode:        model.ExitECCEnableRejected,
		RejectedDisableCode: model.ExitECCDisableRejected,
		encode:              passThrough(isToggle),
	},
	model.ParamMAVLink: {
		ID:                  model.ParamMAVLink,
		Register:            6,
		Description:         "MAVLink framing",
		Toggle:              true,
		InvalidCode:         model.ExitInvalidToggle,
		RejectedCode:        model.ExitMAVLinkEnableRejected,
		RejectedDisableCode: model.ExitMAVLinkDisableRejected,
		encode:              passThrough(isToggle),
	},
	model.ParamOpResend: {
		ID:                  model.ParamOpResend,
		Register:            7,
		Description:         "opportunistic resend",
		Toggle:              true,
		InvalidCode:         model.ExitInvalidToggle,
		RejectedCode:        model.ExitOpResendEnableRejected,
		RejectedDisableCode: model.ExitOpResendDisableRejected,
		encode:              passThrough(isToggle),
	},
}

func passThrough(valid func(int) bool) func(int) (int, bool) {
	return func(v int) (int, bool) {
		return v, valid(v)
	}
}

func isToggle(v int) bool {
	return v == 0 || v == 1
}

// Encode validates value against the parameter's domain and returns the register value
func (d ParameterDef) Encode(value int) (int, error) {
	encoded, ok := d.encode(value)
	if !ok {
		return 0, model.NewValidationError(d.ID, d.InvalidCode, value)
	}
	return encoded, nil
}

// RejectedExitCode returns the exit status used when the radio refuses value
func (d ParameterDef) RejectedExitCode(value int) model.ExitCode {
	if d.Toggle && value == 0 {
		return d.RejectedDisableCode
	}
	return d.RejectedCode
}

// Action describes the change for log messages, e.g. "enable MAVLink framing"
func (d ParameterDef) Action(value int) string {
	if d.Toggle {
		if value == 1 {
			return "enable " + d.Description
		}
		return "disable " + d.Description
	}
	return fmt.Sprintf("set %s to %d", d.Description, value)
}
