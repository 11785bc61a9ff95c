// internal/driver/sik/ack.go
package sik

import (
	"regexp"
	"strings"
)

// AckToken is the acknowledgement the radio prints after a successful command
const AckToken = "OK"

// AckMatcher decides whether a response acknowledges the command that produced it
type AckMatcher interface {
	Acknowledged(response string) bool
}

// SubstringAck accepts any response containing "OK". This is the baseline check; note it
// also passes responses that merely mention OK somewhere.
type SubstringAck struct{}

func (SubstringAck) Acknowledged(response string) bool {
	return strings.Contains(response, AckToken)
}

var strictAckPattern = regexp.MustCompile(`\[[0-9]+\]\s*OK`)

// StrictAck requires the multipoint firmware form "[<node>] OK"
type StrictAck struct{}

func (StrictAck) Acknowledged(response string) bool {
	return strictAckPattern.MatchString(response)
}

// NewAckMatcher returns the strict matcher when strict is set
func NewAckMatcher(strict bool) AckMatcher {
	if strict {
		return StrictAck{}
	}
	return SubstringAck{}
}
