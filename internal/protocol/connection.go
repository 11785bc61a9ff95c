// internal/protocol/connection.go
package protocol

import "time"

// SerialConfig represents serial connection configuration
type SerialConfig struct {
	Port     string        `json:"port"`
	BaudRate int           `json:"baud_rate"`
	DataBits int           `json:"data_bits"`
	StopBits int           `json:"stop_bits"`
	Parity   string        `json:"parity"`
	Timeout  time.Duration `json:"timeout"`
}

// TCPConfig represents a serial-over-TCP bridge connection
type TCPConfig struct {
	Host        string        `json:"host"`
	Port        int           `json:"port"`
	BaudRate    int           `json:"baud_rate"`
	Timeout     time.Duration `json:"timeout"`
	PollTimeout time.Duration `json:"poll_timeout"`
}
