package i2cusb

import (
	"time"

	"github.com/BertoldVdb/go-i2cusb/i2cusb/protocol"
	"github.com/BertoldVdb/go-i2cusb/serial"
	"github.com/sirupsen/logrus"
)

const (
	// InitReadTimeout is the read timeout during the handshake, the adapter can take a
	// while to come out of reset
	InitReadTimeout = 5 * time.Second

	// DefaultReadTimeout is the read timeout for normal operation
	DefaultReadTimeout = time.Second
)

// OpenOptions is a parameter struct for Open
type OpenOptions struct {
	// Port selects /dev/ttyUSB<Port> unless PortName is set
	Port     int
	PortName string

	// Clock defaults to 90kHz
	Clock protocol.ClockSpeed

	// ReadTimeout defaults to DefaultReadTimeout
	ReadTimeout time.Duration

	Logger *logrus.Entry
}

// Open opens the serial port of the adapter and initializes it. Nil options open
// /dev/ttyUSB0 with the defaults.
func Open(options *OpenOptions) (*Session, error) {
	if options == nil {
		options = &OpenOptions{}
	}

	name := options.PortName
	if name == "" {
		name = serial.PortName(options.Port)
	}

	clock := options.Clock
	if clock == 0 {
		clock = protocol.Clock90kHz
	}
	if !clock.Valid() {
		return nil, ErrorInvalidClock
	}

	readTimeout := options.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}

	port, err := serial.Open(&serial.PortOptions{
		PortName:      name,
		InterfaceRate: serial.DefaultInterfaceRate,
		ReadTimeout:   InitReadTimeout,
	})
	if err != nil {
		return nil, err
	}

	s := New(&Options{
		Logger: options.Logger,
		Name:   name,
	})

	if err := s.Initialize(port, clock); err != nil {
		s.Close()
		return nil, err
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}
