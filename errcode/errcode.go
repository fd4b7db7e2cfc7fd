// Package errcode defines the stable, allocation-free error taxonomy shared
// by every subsystem of the pit controller core.
package errcode

// Code is a stable, bus-facing error identifier. It is a string newtype,
// comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes.
const (
	OK Code = "ok"

	// command entry point rejections (§7: "reject silently, keep prior value")
	InvalidParams Code = "invalid_params"
	InvalidConfig Code = "invalid_config"

	// probe / sensor
	ProbeOpen  Code = "probe_open"
	ProbeShort Code = "probe_short"

	// cook-condition anomalies
	FireOut  Code = "fire_out"
	LinkLost Code = "link_lost"

	// session recorder
	SessionIOError  Code = "session_io_error"
	SessionNoPrior  Code = "session_no_prior"
	SessionNotFound Code = "session_not_found"

	// bus / command routing
	UnknownTopic Code = "unknown_topic"
	Timeout      Code = "timeout"
	Busy         Code = "busy"

	Error Code = "error" // generic fallback
)

// E wraps a Code with operation context and an optional cause, for cases
// where more than a bare code is useful in a log line.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return e.Op + ": " + string(e.C) + ": " + e.Msg
	}
	return e.Op + ": " + string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error. A nil error maps
// to OK.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
