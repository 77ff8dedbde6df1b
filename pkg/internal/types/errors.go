package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is wrapped by every configuration validation failure.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrTransportOpen is returned when a session cannot open its link; no loop is started.
	ErrTransportOpen = errors.New("transport open failed")
)

// ProtocolError reports a desynchronized or malformed wire stream. It is fatal
// to the session; the stream carries no framing to recover from.
type ProtocolError struct {
	Offset int64  // byte offset of the offending field in the stream
	Index  uint32 // offending coefficient index, when relevant
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("protocol error at byte %d: %s", e.Offset, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// InvalidConfig wraps ErrInvalidConfiguration with a formatted detail.
func InvalidConfig(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
