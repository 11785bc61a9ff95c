// cmd/sikconfig/flags.go
package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"sik-config/internal/config"
	"sik-config/internal/model"
)

// newFlagSet defines the command line. Values not given on the command line fall back
// to the config file, SIKCONFIG_* environment variables and defaults.
func newFlagSet(output io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("sikconfig", pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.SortFlags = false

	fs.StringP("port", "p", config.DefaultSerialPort, "serial port the radio is attached to, or tcp://host:port")
	fs.IntP("baud", "b", 0, "serial port baud rate; 0 detects it")
	fs.BoolP("test-baud", "t", false, "detect the baud rate, print it and exit")
	fs.BoolP("local", "l", false, "configure the local radio (default)")
	fs.BoolP("remote", "r", false, "configure the remote radio over the air")
	fs.Bool("show-parameters", false, "print the radio's EEPROM parameters and exit")

	fs.Int("serial-speed", 0, fmt.Sprintf("set SERIAL_SPEED, one of %v", model.SerialSpeeds()))
	fs.Int("adr", 0, fmt.Sprintf("set AIR_SPEED in kbit/s, one of %v", model.AirSpeeds))
	fs.Int("netid", 0, fmt.Sprintf("set NETID, %d-%d", model.MinNetID, model.MaxNetID))
	fs.Bool("ecc-on", false, "enable error correcting code")
	fs.Bool("ecc-off", false, "disable error correcting code")
	fs.Bool("mavlink-on", false, "enable MAVLink framing")
	fs.Bool("mavlink-off", false, "disable MAVLink framing")
	fs.Bool("or-on", false, "enable opportunistic resend")
	fs.Bool("or-off", false, "disable opportunistic resend")

	fs.Bool("strict-ack", false, "require the \"[n] OK\" acknowledgement form")
	fs.BoolP("verbose", "v", false, "log every command and response")
	fs.String("config", "", "YAML configuration file")
	fs.Bool("list-ports", false, "list candidate serial ports and exit")
	fs.Bool("version", false, "print the version and exit")

	return fs
}

// operationFor picks the run mode. Baud testing wins over showing parameters, which
// wins over applying settings.
func operationFor(fs *pflag.FlagSet) model.OperationType {
	if testBaud, _ := fs.GetBool("test-baud"); testBaud {
		return model.OperationTypeProbeBaud
	}
	if show, _ := fs.GetBool("show-parameters"); show {
		return model.OperationTypeShowParameters
	}
	return model.OperationTypeApplySettings
}
