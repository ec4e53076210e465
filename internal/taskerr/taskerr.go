// Package taskerr defines the error taxonomy the supervisor uses to decide
// how each failure is handled locally: logged and skipped, logged and
// retried, or downgraded to a warning.
package taskerr

import "fmt"

// Kind distinguishes the taxonomy named by the failure-handling design.
type Kind int

const (
	// ConfigKind marks a malformed or out-of-range configuration value.
	ConfigKind Kind = iota
	// SpawnKind marks an OS failure creating a child process.
	SpawnKind
	// IOKind marks a stdout/stderr redirection target that could not be opened.
	IOKind
	// UnknownProgramKind marks a command referencing a Program name that does not exist.
	UnknownProgramKind
	// FatalKind marks a top-level error that should terminate the process.
	FatalKind
)

func (k Kind) String() string {
	switch k {
	case ConfigKind:
		return "ConfigError"
	case SpawnKind:
		return "SpawnError"
	case IOKind:
		return "IOError"
	case UnknownProgramKind:
		return "UnknownProgram"
	case FatalKind:
		return "FatalError"
	default:
		return "Error"
	}
}

// Error lets a bare Kind itself be used as the target of errors.Is, e.g.
// errors.Is(err, taskerr.ConfigKind).
func (k Kind) Error() string { return k.String() }

// Error is a taxonomy-tagged error carrying an optional wrapped cause.
type Error struct {
	Kind   Kind
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets callers match on taxonomy alone via errors.Is(err, taskerr.Kind(...))
// without recovering the full *Error, by comparing just the Kind field.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind == k
}

func New(kind Kind, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Cause: cause}
}

func Config(reason string, cause error) *Error { return New(ConfigKind, reason, cause) }
func Spawn(reason string, cause error) *Error  { return New(SpawnKind, reason, cause) }
func IO(reason string, cause error) *Error     { return New(IOKind, reason, cause) }
func UnknownProgram(name string) *Error {
	return New(UnknownProgramKind, fmt.Sprintf("programs not found: %s", name), nil)
}
func Fatal(reason string, cause error) *Error { return New(FatalKind, reason, cause) }
