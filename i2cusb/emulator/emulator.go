// Package emulator implements the adapter firmware side of the protocol on top of a
// simulated I2C bus. It lets the session be exercised without hardware.
package emulator

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/BertoldVdb/go-i2cusb/bidirpipe"
	"github.com/BertoldVdb/go-i2cusb/bufferedpipe"
	"github.com/BertoldVdb/go-i2cusb/i2cusb/protocol"
	"github.com/BertoldVdb/go-i2cusb/pcd8584"
	"github.com/sirupsen/logrus"
)

// Target is a slave device on the simulated bus
type Target interface {
	// Start is called when the target is addressed. It returns whether it acknowledges.
	Start(read bool) bool

	// Write receives a byte from the master and returns the acknowledge
	Write(b byte) bool

	// Read supplies the next byte. ack is what the master answers to it.
	Read(ack bool) byte

	Stop()
}

// Emulator answers command frames like the adapter firmware does
type Emulator struct {
	sync.Mutex

	targets map[byte]Target
	logger  *logrus.Entry

	/* Bus state */
	active  Target
	busy    bool
	reading bool
	latch   byte

	clock     protocol.ClockSpeed
	relay     bool
	led       bool
	portOut   byte
	portIn    byte
	resets    int
	injection byte
	faults    []func([]byte) []byte
}

// New creates an emulator with an empty bus. logger may be nil.
func New(logger *logrus.Entry) *Emulator {
	return &Emulator{
		targets: make(map[byte]Target),
		logger:  logger,
	}
}

// Attach connects a target at the 7 bit address
func (e *Emulator) Attach(addr byte, t Target) {
	e.Lock()
	defer e.Unlock()

	e.targets[addr&0x7F] = t
}

// InjectStatus ORs mask into the status byte of the next bus response
func (e *Emulator) InjectStatus(mask byte) {
	e.Lock()
	defer e.Unlock()

	e.injection |= mask
}

// InjectFault replaces the next response with whatever f returns
func (e *Emulator) InjectFault(f func(resp []byte) []byte) {
	e.Lock()
	defer e.Unlock()

	e.faults = append(e.faults, f)
}

// SetPortInput sets the level of the IO port input pins
func (e *Emulator) SetPortInput(b byte) {
	e.Lock()
	defer e.Unlock()

	e.portIn = b
}

// PortOutput returns what was last written to the IO port
func (e *Emulator) PortOutput() byte {
	e.Lock()
	defer e.Unlock()

	return e.portOut
}

// Relay returns the relay state
func (e *Emulator) Relay() bool {
	e.Lock()
	defer e.Unlock()

	return e.relay
}

// Led returns the LED state
func (e *Emulator) Led() bool {
	e.Lock()
	defer e.Unlock()

	return e.led
}

// Clock returns the clock code that was configured
func (e *Emulator) Clock() protocol.ClockSpeed {
	e.Lock()
	defer e.Unlock()

	return e.clock
}

// BusBusy reports whether a transfer is in progress
func (e *Emulator) BusBusy() bool {
	e.Lock()
	defer e.Unlock()

	return e.busy
}

// Resets returns how many reset commands were handled
func (e *Emulator) Resets() int {
	e.Lock()
	defer e.Unlock()

	return e.resets
}

func (e *Emulator) status(ack bool) byte {
	var s byte
	if !e.busy {
		s |= pcd8584.MaskBB
	}
	if ack {
		s |= pcd8584.MaskAD0LRB
	}

	s |= e.injection
	e.injection = 0
	return s
}

func (e *Emulator) release() {
	if e.active != nil {
		e.active.Stop()
	}
	e.active = nil
	e.busy = false
	e.reading = false
}

func (e *Emulator) start(mode protocol.Mode, addr byte) bool {
	read := mode == protocol.Read
	e.busy = true
	e.reading = read
	e.active = nil

	e.latch = addr << 1
	if read {
		e.latch |= 1
	}

	t, ok := e.targets[addr&0x7F]
	if ok && t.Start(read) {
		e.active = t
		return true
	}
	return false
}

func (e *Emulator) read(ack bool) (byte, bool) {
	/* The controller hands out the byte it saw last and clocks in the next one */
	out := e.latch

	if e.active == nil || !e.reading {
		e.latch = 0xFF
		return out, false
	}

	e.latch = e.active.Read(ack)
	return out, ack
}

// Handle processes one command frame and returns the response
func (e *Emulator) Handle(cmd protocol.CommandFrame) []byte {
	e.Lock()
	defer e.Unlock()

	resp := e.handle(cmd)

	if len(e.faults) > 0 {
		f := e.faults[0]
		e.faults = e.faults[1:]
		resp = f(resp)
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"rx": cmd.String(),
			"tx": resp,
		}).Debug("Emulator frame")
	}

	return resp
}

func (e *Emulator) handle(cmd protocol.CommandFrame) []byte {
	op := cmd.Opcode()
	operand := cmd.Operand()

	/* The emulated controller treats a repeated start on an idle bus as a plain start */
	if mode, _, _, ok := protocol.ParseStart(op); ok {
		ack := e.start(mode, operand)
		return []byte{byte(op), e.status(ack)}
	}

	switch op {
	case protocol.OpReset:
		e.release()
		e.resets++
		e.relay = false
		e.led = false
		e.injection = 0
		return []byte{byte(op), operand}

	case protocol.OpClock:
		c := protocol.ClockSpeed(operand)
		if !c.Valid() {
			return []byte{byte(op), 0}
		}
		e.clock = c
		return []byte{byte(op), operand}

	case protocol.OpStop:
		e.release()
		return []byte{byte(op), e.status(false)}

	case protocol.OpWriteByte:
		ack := false
		if e.active != nil && !e.reading {
			ack = e.active.Write(operand)
		}
		e.latch = operand
		return []byte{byte(op), operand, e.status(ack)}

	case protocol.OpReadByte:
		b, ack := e.read(operand != '0')
		return []byte{byte(op), b, e.status(ack)}

	case protocol.OpPortWrite:
		e.portOut = operand
		return []byte{byte(op), operand}

	case protocol.OpPortRead:
		return []byte{byte(op), e.portIn}

	case protocol.OpRelay:
		e.relay = operand == '1'
		return []byte{byte(op), operand}

	case protocol.OpLed:
		e.led = operand == '1'
		return []byte{byte(op), operand}
	}

	return []byte{'?', byte(op)}
}

// Serve answers frames read from port until it is closed
func (e *Emulator) Serve(port io.ReadWriter) error {
	var cmd protocol.CommandFrame

	for {
		_, err := io.ReadFull(port, cmd[:])
		if err != nil {
			if err == io.EOF || errors.Is(err, bufferedpipe.ErrorClosed) {
				return nil
			}
			return err
		}

		if _, err := port.Write(e.Handle(cmd)); err != nil {
			if errors.Is(err, bufferedpipe.ErrorClosed) {
				return nil
			}
			return err
		}
	}
}

// Connect starts serving on an in-memory link and returns the host end. Reads on the host
// end time out after readTimeout. Closing the host end stops the emulator; the returned
// channel delivers the result of Serve.
func (e *Emulator) Connect(readTimeout time.Duration) (*bidirpipe.PipeReadWriteCloser, <-chan error) {
	host, device := bidirpipe.CreateBidirPipe(0)
	host.SetReadTimeout(readTimeout)

	done := make(chan error, 1)
	go func() {
		done <- e.Serve(device)
	}()

	return host, done
}
