// internal/model/errors.go
package model

import (
	"errors"
	"fmt"
)

// ExitCode is the process exit status reported for a terminal condition
type ExitCode int

const (
	ExitOK                      ExitCode = 0
	ExitFailure                 ExitCode = 1
	ExitUsage                   ExitCode = 2
	ExitBaudUndetectable        ExitCode = 100
	ExitInvalidBaud             ExitCode = 101
	ExitSerialSpeedRejected     ExitCode = 102
	ExitInvalidSerialSpeed      ExitCode = 103
	ExitAirSpeedRejected        ExitCode = 104
	ExitInvalidAirSpeed         ExitCode = 105
	ExitNetIDRejected           ExitCode = 106
	ExitInvalidNetID            ExitCode = 107
	ExitECCEnableRejected       ExitCode = 108
	ExitECCDisableRejected      ExitCode = 109
	ExitMAVLinkEnableRejected   ExitCode = 110
	ExitMAVLinkDisableRejected  ExitCode = 111
	ExitOpResendEnableRejected  ExitCode = 112
	ExitOpResendDisableRejected ExitCode = 113
	ExitPortOpenFailed          ExitCode = 114
	ExitCommandModeFailed       ExitCode = 115
	ExitInvalidToggle           ExitCode = 116
)

// ErrorKind classifies radio failures
type ErrorKind string

const (
	KindConnection     ErrorKind = "CONNECTION"
	KindUnacknowledged ErrorKind = "UNACKNOWLEDGED"
	KindValidation     ErrorKind = "VALIDATION"
	KindUndetectable   ErrorKind = "UNDETECTABLE"
	KindCommandMode    ErrorKind = "COMMAND_MODE"
	KindUsage          ErrorKind = "USAGE"
)

// Sentinel errors, matched with errors.Is through RadioError.Unwrap
var (
	ErrConnection       = errors.New("connection error")
	ErrUnacknowledged   = errors.New("command not acknowledged")
	ErrValidation       = errors.New("value outside its domain")
	ErrBaudUndetectable = errors.New("baud rate undetectable")
	ErrCommandMode      = errors.New("could not enter command mode")
	ErrUsage            = errors.New("invalid usage")
)

var kindSentinels = map[ErrorKind]error{
	KindConnection:     ErrConnection,
	KindUnacknowledged: ErrUnacknowledged,
	KindValidation:     ErrValidation,
	KindUndetectable:   ErrBaudUndetectable,
	KindCommandMode:    ErrCommandMode,
	KindUsage:          ErrUsage,
}

// RadioError carries a failure together with the exit status it maps to
type RadioError struct {
	Kind      ErrorKind
	Code      ExitCode
	Parameter ParameterID
	Response  string
	Err       error
}

func (e *RadioError) Error() string {
	msg := string(e.Kind)
	if e.Parameter != "" {
		msg = fmt.Sprintf("%s %s", e.Parameter, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RadioError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error kind
func (e *RadioError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// NewConnectionError wraps a port acquisition failure
func NewConnectionError(err error) *RadioError {
	return &RadioError{Kind: KindConnection, Code: ExitPortOpenFailed, Err: err}
}

// NewValidationError reports a requested value outside its domain
func NewValidationError(id ParameterID, code ExitCode, value int) *RadioError {
	return &RadioError{
		Kind:      KindValidation,
		Code:      code,
		Parameter: id,
		Err:       fmt.Errorf("invalid value %d", value),
	}
}

// NewUnacknowledgedError reports a command the radio did not acknowledge
func NewUnacknowledgedError(id ParameterID, code ExitCode, response string) *RadioError {
	return &RadioError{
		Kind:      KindUnacknowledged,
		Code:      code,
		Parameter: id,
		Response:  response,
		Err:       fmt.Errorf("setting %s failed", id),
	}
}

// ExitCodeOf returns the exit status for err; ExitOK for nil and ExitFailure when err
// carries no RadioError.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitOK
	}
	var radioErr *RadioError
	if errors.As(err, &radioErr) {
		return radioErr.Code
	}
	return ExitFailure
}
