package i2cusb

import (
	"errors"
	"fmt"

	"github.com/BertoldVdb/go-i2cusb/pcd8584"
)

// Error is a sentinel error of the session
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrorNotInitialized    = Error("Adapter not initialized")
	ErrorInvalidClock      = Error("Invalid clock speed")
	ErrorInvalidAddress    = Error("Invalid 7 bit I2C address")
	ErrorResetEchoMismatch = Error("Adapter did not echo the reset command")
	ErrorClockEchoMismatch = Error("Adapter did not echo the clock command")
	ErrorTimeout           = Error("No response from adapter")
	ErrorShortWrite        = Error("Command frame not completely sent")
	ErrorNoAck             = Error("No acknowledge received")

	ErrorArbitrationLost = pcd8584.ErrorArbitrationLost
	ErrorBusError        = pcd8584.ErrorBusError
)

// TransportError means the serial link failed or timed out. The session is no longer
// initialized afterwards.
type TransportError struct {
	Op string

	// Received holds the bytes that did arrive when a response was cut short
	Received []byte
	Want     int

	Err error
}

func (e *TransportError) Error() string {
	if e.Want > 0 {
		return fmt.Sprintf("i2cusb: %s: transport failed after %d of %d bytes: %v", e.Op, len(e.Received), e.Want, e.Err)
	}
	return fmt.Sprintf("i2cusb: %s: transport failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolViolation means the adapter answered with a frame that does not belong to the
// command. The byte stream can not be trusted anymore and the session is no longer initialized.
type ProtocolViolation struct {
	Op  string
	Err error
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("i2cusb: %s: protocol violation: %v", e.Op, e.Err)
}

func (e *ProtocolViolation) Unwrap() error { return e.Err }

// InitializationFailure is returned when the reset/clock handshake failed. Reason is
// ErrorResetEchoMismatch or ErrorClockEchoMismatch for bad echoes, nil when the
// transport itself failed; Err holds the underlying cause.
type InitializationFailure struct {
	Step   string
	Reason error
	Err    error
}

func (e *InitializationFailure) Error() string {
	if e.Reason != nil {
		return fmt.Sprintf("i2cusb: initialization failed during %s: %v: %v", e.Step, e.Reason, e.Err)
	}
	return fmt.Sprintf("i2cusb: initialization failed during %s: %v", e.Step, e.Err)
}

func (e *InitializationFailure) Is(target error) bool {
	return e.Reason != nil && target == e.Reason
}

func (e *InitializationFailure) Unwrap() error { return e.Err }

// NackError reports a transfer that was not acknowledged. Index is -1 for the address
// phase, otherwise the position of the data byte.
type NackError struct {
	Addr  byte
	Index int
}

func (e *NackError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("i2cusb: no device at address 0x%02X", e.Addr)
	}
	return fmt.Sprintf("i2cusb: device 0x%02X did not acknowledge byte %d", e.Addr, e.Index)
}

func (e *NackError) Unwrap() error { return ErrorNoAck }

// IsFatal reports whether err ended the session, requiring a new Initialize
func IsFatal(err error) bool {
	var te *TransportError
	var pv *ProtocolViolation
	return errors.As(err, &te) || errors.As(err, &pv)
}
