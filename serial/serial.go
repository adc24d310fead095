package serial

import (
	"fmt"
	"io"
	"time"
)

// Error is a sentinel error of the serial package
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrorTimeout is returned by Read when no byte arrived within the read timeout
	ErrorTimeout = Error("Serial read timeout")

	// ErrorClosed is returned when the port is used after Close
	ErrorClosed = Error("Port closed")

	// ErrorUnsupported is returned on platforms without a serial implementation
	ErrorUnsupported = Error("Serial ports are not supported on this platform")
)

const (
	// DefaultInterfaceRate is the rate of the adapter's USB serial bridge
	DefaultInterfaceRate = 38400

	// DefaultReadTimeout is how long Read waits for the first byte
	DefaultReadTimeout = time.Second
)

// Port is an io.ReadWriteCloser for a serial device. Read returns ErrorTimeout when
// nothing was received within the configured read timeout.
type Port interface {
	io.ReadWriteCloser

	/* Configuration */
	SetInterfaceRate(rate uint32) error
	SetReadTimeout(timeout time.Duration) error

	/* Discard anything still buffered in either direction */
	Flush() error

	Name() string
}

// PortOptions is a parameter struct for Open
type PortOptions struct {
	PortName      string
	InterfaceRate uint32
	FlowControl   bool

	// ReadTimeout is rounded to tenths of a second, the termios resolution. Zero selects
	// DefaultReadTimeout.
	ReadTimeout time.Duration
}

// PortName returns the device node of the n-th USB serial converter
func PortName(n int) string {
	return fmt.Sprintf("/dev/ttyUSB%d", n)
}

// Open opens and configures the port for raw 8N1 operation
func Open(options *PortOptions) (Port, error) {
	opts := *options
	if opts.InterfaceRate == 0 {
		opts.InterfaceRate = DefaultInterfaceRate
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}

	port, err := openPortOs(&opts)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// deciseconds converts a timeout to the VTIME unit, clamped to what fits in a cc_t
func deciseconds(timeout time.Duration) uint8 {
	ds := (timeout + 50*time.Millisecond) / (100 * time.Millisecond)
	if ds < 1 {
		ds = 1
	}
	if ds > 255 {
		ds = 255
	}
	return uint8(ds)
}
