package i2cusb

import (
	"fmt"

	"github.com/BertoldVdb/go-i2cusb/i2cusb/protocol"
	"periph.io/x/periph/conn"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/physic"
)

// Bus exposes a session as a periph.io I²C bus, so device drivers written against
// periph.io can use the adapter.
type Bus struct {
	s *Session
}

var _ i2c.BusCloser = &Bus{}

// NewBus wraps an initialized session
func NewBus(s *Session) *Bus {
	return &Bus{s: s}
}

// Session returns the wrapped session
func (b *Bus) Session() *Session {
	return b.s
}

// Close implements io.Closer and closes the session.
func (b *Bus) Close() error {
	return b.s.Close()
}

// Duplex implements conn.Conn.
func (b *Bus) Duplex() conn.Duplex {
	return conn.Half
}

func (b *Bus) String() string {
	return b.s.String()
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return fmt.Errorf("i2cusb: invalid address 0x%X; only 7 bit addresses are supported", addr)
	}
	return b.s.Transfer(byte(addr), w, r)
}

// SetSpeed implements i2c.Bus. The adapter only knows four clocks, the fastest one not
// above f is used.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	c, err := ClockForFrequency(f)
	if err != nil {
		return err
	}
	return b.s.SetClock(c)
}

// Frequency returns the SCL frequency of a clock code
func Frequency(c protocol.ClockSpeed) physic.Frequency {
	return physic.Frequency(c.Hertz()) * physic.Hertz
}

// ClockForFrequency picks the fastest clock code that does not exceed f
func ClockForFrequency(f physic.Frequency) (protocol.ClockSpeed, error) {
	for _, c := range protocol.ClockSpeeds {
		if Frequency(c) <= f {
			return c, nil
		}
	}
	return 0, fmt.Errorf("i2cusb: invalid speed %s; minimum supported clock is %s", f, Frequency(protocol.Clock1500Hz))
}
