// Package errors provides coded errors shared by the brightness core and its
// front ends.
package errors

import (
	"errors"
	"fmt"
)

// Basic error check functions from standard library
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// ErrorCode identifies a class of failure.
type ErrorCode string

const (
	ErrEnumeration    ErrorCode = "enumeration_failed"
	ErrProbe          ErrorCode = "probe_failed"
	ErrHardwareRead   ErrorCode = "hardware_read_failed"
	ErrHardwareWrite  ErrorCode = "hardware_write_failed"
	ErrNoMonitors     ErrorCode = "no_monitors"
	ErrUnsupported    ErrorCode = "unsupported_platform"
	ErrInvalidConfig  ErrorCode = "invalid_configuration"
	ErrReadConfig     ErrorCode = "read_config_failed"
	ErrInvalidArg     ErrorCode = "invalid_argument"
	ErrMonitorMissing ErrorCode = "monitor_not_found"
	ErrAutostart      ErrorCode = "autostart_failed"
)

var messages = map[ErrorCode]string{
	ErrEnumeration:    "display enumeration failed",
	ErrProbe:          "monitor probing failed",
	ErrHardwareRead:   "hardware read failed",
	ErrHardwareWrite:  "hardware write failed",
	ErrNoMonitors:     "no monitors detected",
	ErrUnsupported:    "not supported on this platform",
	ErrInvalidConfig:  "invalid configuration",
	ErrReadConfig:     "failed to read configuration",
	ErrInvalidArg:     "invalid argument",
	ErrMonitorMissing: "monitor not found",
	ErrAutostart:      "autostart update failed",
}

// Message returns the default text for code.
func Message(code ErrorCode) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return string(code)
}

// Error is a coded error with the operation that produced it.
type Error struct {
	Code ErrorCode
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := Message(e.Code)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code, so errors.Is(err,
// errors.New(ErrProbe, "")) works regardless of Op and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New returns an error with no underlying cause.
func New(code ErrorCode, op string) error {
	return &Error{Code: code, Op: op}
}

// Wrap attaches code and op to err. A nil err yields nil.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Err: err}
}

// Errorf builds a coded error from a format string.
func Errorf(code ErrorCode, op, format string, args ...any) error {
	return &Error{Code: code, Op: op, Err: fmt.Errorf(format, args...)}
}

// CodeOf returns the code of the outermost *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
