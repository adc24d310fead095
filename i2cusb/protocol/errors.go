package protocol

import "fmt"

// Error is a sentinel error of the codec
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrorOpcodeMismatch = Error("Echoed opcode does not match")
	ErrorShortRead      = Error("Response frame too short")
	ErrorEchoMismatch   = Error("Echoed operand does not match")
)

// FrameErrorKind tells which check a response failed
type FrameErrorKind int

const (
	OpcodeMismatch FrameErrorKind = iota + 1
	ShortRead
	EchoMismatch
)

func (k FrameErrorKind) sentinel() error {
	switch k {
	case OpcodeMismatch:
		return ErrorOpcodeMismatch
	case ShortRead:
		return ErrorShortRead
	case EchoMismatch:
		return ErrorEchoMismatch
	}
	return nil
}

// FrameError describes a response that could not be trusted. It unwraps to one of the
// sentinel errors above.
type FrameError struct {
	Kind     FrameErrorKind
	Expected Opcode
	Received []byte

	// Length that was required, only set for ShortRead
	Want int
}

func (e *FrameError) Error() string {
	switch e.Kind {
	case ShortRead:
		return fmt.Sprintf("%s: expected %d bytes for %v, got %d (% X)", e.Kind.sentinel(), e.Want, e.Expected, len(e.Received), e.Received)
	default:
		return fmt.Sprintf("%s: expected %v, got % X", e.Kind.sentinel(), e.Expected, e.Received)
	}
}

func (e *FrameError) Unwrap() error {
	return e.Kind.sentinel()
}

func newFrameError(kind FrameErrorKind, expected Opcode, received []byte, want int) *FrameError {
	rx := make([]byte, len(received))
	copy(rx, received)

	if kind != ShortRead {
		want = 0
	}

	return &FrameError{
		Kind:     kind,
		Expected: expected,
		Received: rx,
		Want:     want,
	}
}
