// Package enum decodes the small set of string-keyed enumerations the
// configuration schema accepts: restart policy and stop signal. Decoding is
// case-insensitive and rejects anything outside the known set.
package enum

import (
	"fmt"
	"strings"
)

// AutoRestart is a Program's restart policy.
type AutoRestart int

const (
	// Never restart the child once it has exited, regardless of cause.
	Never AutoRestart = iota
	// Unexpected restarts the child only when its exit was not "expected"
	// (see Program.ExitCodes) or it did not survive the start stability window.
	Unexpected
	// Always restart the child on every exit, subject to the retry limit.
	Always
)

func (a AutoRestart) String() string {
	switch a {
	case Never:
		return "NEVER"
	case Unexpected:
		return "UNEXPECTED"
	case Always:
		return "ALWAYS"
	default:
		return fmt.Sprintf("AutoRestart(%d)", int(a))
	}
}

var autoRestartByName = map[string]AutoRestart{
	"NEVER":      Never,
	"UNEXPECTED": Unexpected,
	"ALWAYS":     Always,
}

// ParseAutoRestart decodes a restart policy name, case-insensitively.
func ParseAutoRestart(value string) (AutoRestart, error) {
	v, ok := autoRestartByName[strings.ToUpper(strings.TrimSpace(value))]
	if !ok {
		return 0, fmt.Errorf("%w: auto_restart %q", ErrUnknownEnum, value)
	}
	return v, nil
}

// Signal is the set of stop signals a Program may request.
type Signal int

const (
	TERM Signal = iota
	HUP
	INT
	QUIT
	KILL
	USR1
	USR2
)

func (s Signal) String() string {
	switch s {
	case TERM:
		return "TERM"
	case HUP:
		return "HUP"
	case INT:
		return "INT"
	case QUIT:
		return "QUIT"
	case KILL:
		return "KILL"
	case USR1:
		return "USR1"
	case USR2:
		return "USR2"
	default:
		return fmt.Sprintf("Signal(%d)", int(s))
	}
}

var signalByName = map[string]Signal{
	"TERM": TERM,
	"HUP":  HUP,
	"INT":  INT,
	"QUIT": QUIT,
	"KILL": KILL,
	"USR1": USR1,
	"USR2": USR2,
}

// ParseSignal decodes a stop-signal name, case-insensitively.
func ParseSignal(value string) (Signal, error) {
	v, ok := signalByName[strings.ToUpper(strings.TrimSpace(value))]
	if !ok {
		return 0, fmt.Errorf("%w: stop_signal %q", ErrUnknownEnum, value)
	}
	return v, nil
}

// ErrUnknownEnum is wrapped by ParseAutoRestart/ParseSignal so callers can
// distinguish a bad enum value from other configuration errors.
var ErrUnknownEnum = fmt.Errorf("unknown enum value")
