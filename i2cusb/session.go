// Package i2cusb drives an I2C bus through the USB adapter built around a PCD8584 controller.
//
// Every operation sends one two byte command frame over the serial link and waits for the
// response. Transport failures and malformed responses end the session; bus conditions like a
// missing acknowledge or lost arbitration are returned as a pcd8584.BusStatus and left to the
// caller. Nothing is retried.
package i2cusb

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/BertoldVdb/go-i2cusb/i2cusb/protocol"
	"github.com/BertoldVdb/go-i2cusb/logrusconfig"
	"github.com/BertoldVdb/go-i2cusb/pcd8584"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Transport is the byte link to the adapter. Read must return within the link's fixed
// timeout; a read returning no data counts as a timeout. If the transport implements
// io.Closer it is closed with the session, and if it has a Flush() error method it is used
// to drop stale input before the handshake.
type Transport interface {
	io.ReadWriter
}

type flusher interface {
	Flush() error
}

// State is the lifecycle state of a session
type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Options is a parameter struct for New
type Options struct {
	// Logger receives frame traces at debug level. Nil creates one through logrusconfig.
	Logger *logrus.Entry

	// Name identifies the adapter in logs, usually the serial port name
	Name string
}

// Session owns the transport to one adapter. Calls are serialized internally, but the
// protocol has no multiplexing: a transaction built from several primitives is only
// atomic when done through the helpers (Transfer, ReadFrom, ...).
type Session struct {
	mutex sync.Mutex

	port  Transport
	state State
	clock protocol.ClockSpeed

	name   string
	logger *logrus.Entry
}

// New creates an uninitialized session
func New(options *Options) *Session {
	if options == nil {
		options = &Options{}
	}

	logger := options.Logger
	if logger == nil {
		logger = logrusconfig.GetLogger(logrus.InfoLevel, "i2cusb")
	}

	fields := logrus.Fields{"session": uuid.New().String()}
	if options.Name != "" {
		fields["port"] = options.Name
	}

	return &Session{
		name:   options.Name,
		logger: logger.WithFields(fields),
	}
}

// State returns the lifecycle state
func (s *Session) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.state
}

// IsInitialized reports whether the handshake succeeded and no fatal error happened since
func (s *Session) IsInitialized() bool {
	return s.State() == Ready
}

// Clock returns the clock code set during the last successful handshake
func (s *Session) Clock() protocol.ClockSpeed {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.clock
}

func (s *Session) String() string {
	if s.name == "" {
		return "i2cusb"
	}
	return "i2cusb(" + s.name + ")"
}

// Initialize takes ownership of port and performs the reset and clock handshake. An
// invalid clock code fails before any I/O. On failure the session stays uninitialized;
// the transport is kept so Close can release it.
func (s *Session) Initialize(port Transport, clock protocol.ClockSpeed) error {
	if !clock.Valid() {
		return ErrorInvalidClock
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.port != nil && !sameTransport(s.port, port) {
		s.closePort()
	}

	s.port = port
	s.state = Initializing

	if f, ok := port.(flusher); ok {
		if err := f.Flush(); err != nil {
			s.logger.WithError(err).Warn("Failed to flush transport")
		}
	}

	if err := s.handshake("reset", protocol.EncodeReset(), ErrorResetEchoMismatch); err != nil {
		return err
	}
	if err := s.handshake("clock", protocol.EncodeClock(clock), ErrorClockEchoMismatch); err != nil {
		return err
	}

	s.clock = clock
	s.state = Ready
	s.logger.WithField("clock", clock).Info("Adapter initialized")

	return nil
}

func (s *Session) handshake(step string, cmd protocol.CommandFrame, reason error) error {
	rx, err := s.exchange(step, cmd)
	if err == nil {
		err = protocol.DecodeEcho(rx, cmd)
		if err == nil {
			return nil
		}
	} else {
		reason = nil
	}

	s.state = Uninitialized
	s.logger.WithError(err).WithField("step", step).Error("Initialization failed")

	return &InitializationFailure{
		Step:   step,
		Reason: reason,
		Err:    err,
	}
}

// SetClock changes the SCL frequency of an initialized adapter
func (s *Session) SetClock(clock protocol.ClockSpeed) error {
	if !clock.Valid() {
		return ErrorInvalidClock
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.echoCommand("clock", protocol.EncodeClock(clock)); err != nil {
		return err
	}

	s.clock = clock
	s.logger.WithField("clock", clock).Info("Clock changed")
	return nil
}

// Close generates a stop condition and releases the transport. The answer to the stop is
// only logged. Close can be called more than once.
func (s *Session) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.port == nil {
		return nil
	}

	if s.state == Ready {
		rx, err := s.exchange("close", protocol.EncodeStop())
		if err != nil {
			s.logger.WithError(err).Debug("Stop before close failed")
		} else if _, err := protocol.DecodeResponse(rx, protocol.OpStop, false); err != nil {
			s.logger.WithError(err).Debug("Unexpected answer to stop before close")
		}
	}

	s.state = Uninitialized
	return s.closePort()
}

// sameTransport compares two transports without panicking on value types that
// can not be compared
func sameTransport(a, b Transport) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}

func (s *Session) closePort() error {
	port := s.port
	s.port = nil

	if c, ok := port.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// exchange sends one command and collects the response. Only the transport is checked here.
func (s *Session) exchange(op string, cmd protocol.CommandFrame) ([]byte, error) {
	if s.port == nil {
		return nil, ErrorNotInitialized
	}

	n, err := s.port.Write(cmd.Bytes())
	if err == nil && n != len(cmd) {
		err = ErrorShortWrite
	}
	if err != nil {
		return nil, s.fail(&TransportError{Op: op, Err: err})
	}

	want := protocol.ResponseLength(cmd.Opcode())
	buf := make([]byte, want)
	got := 0

	for got < want {
		n, err := s.port.Read(buf[got:])
		got += n

		if got < want {
			if err == nil && n == 0 {
				err = ErrorTimeout
			}
			if err != nil {
				return nil, s.fail(&TransportError{Op: op, Received: buf[:got], Want: want, Err: err})
			}
		}
	}

	if s.logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
		s.logger.WithFields(logrus.Fields{
			"tx": cmd.String(),
			"rx": fmt.Sprintf("% X", buf),
		}).Debug(op)
	}

	return buf, nil
}

// fail drops the session to uninitialized after a fatal error
func (s *Session) fail(err error) error {
	if s.state != Uninitialized {
		s.logger.WithError(err).Error("Session no longer usable, initialize again")
	}
	s.state = Uninitialized
	return err
}

func (s *Session) violation(op string, err error) error {
	return s.fail(&ProtocolViolation{Op: op, Err: err})
}

func (s *Session) checkReady() error {
	if s.state != Ready {
		return ErrorNotInitialized
	}
	return nil
}

// busCommand runs a command answered by an opcode echo, an optional payload and the status
func (s *Session) busCommand(op string, cmd protocol.CommandFrame, hasPayload bool) (protocol.ResponseFrame, pcd8584.BusStatus, error) {
	if err := s.checkReady(); err != nil {
		return protocol.ResponseFrame{}, pcd8584.BusStatus{}, err
	}

	rx, err := s.exchange(op, cmd)
	if err != nil {
		return protocol.ResponseFrame{}, pcd8584.BusStatus{}, err
	}

	resp, err := protocol.DecodeResponse(rx, cmd.Opcode(), hasPayload)
	if err != nil {
		return protocol.ResponseFrame{}, pcd8584.BusStatus{}, s.violation(op, err)
	}

	status := pcd8584.Decode(resp.Status)
	if s.logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
		s.logger.WithField("op", op).Debug("Busstatus: ", status)
	}

	return resp, status, nil
}

// echoCommand runs a command whose response repeats the command
func (s *Session) echoCommand(op string, cmd protocol.CommandFrame) error {
	if err := s.checkReady(); err != nil {
		return err
	}

	rx, err := s.exchange(op, cmd)
	if err != nil {
		return err
	}

	if err := protocol.DecodeEcho(rx, cmd); err != nil {
		return s.violation(op, err)
	}
	return nil
}

func (s *Session) start(mode protocol.Mode, ackSuppressed bool, address byte) (pcd8584.BusStatus, error) {
	_, status, err := s.busCommand("start", protocol.EncodeStart(mode, ackSuppressed, address), false)
	return status, err
}

func (s *Session) restart(mode protocol.Mode, ackSuppressed bool, address byte) (pcd8584.BusStatus, error) {
	_, status, err := s.busCommand("restart", protocol.EncodeRestart(mode, ackSuppressed, address), false)
	return status, err
}

func (s *Session) stop() (pcd8584.BusStatus, error) {
	_, status, err := s.busCommand("stop", protocol.EncodeStop(), false)
	return status, err
}

func (s *Session) writeByte(b byte) (pcd8584.BusStatus, error) {
	resp, status, err := s.busCommand("write", protocol.EncodeWriteByte(b), true)
	if err != nil {
		return status, err
	}

	if err := resp.ExpectPayload(b); err != nil {
		return pcd8584.BusStatus{}, s.violation("write", err)
	}
	return status, nil
}

func (s *Session) readByte(suppressNextAck bool) (byte, pcd8584.BusStatus, error) {
	resp, status, err := s.busCommand("read", protocol.EncodeReadByte(suppressNextAck), true)
	return resp.Payload, status, err
}

// Start generates a start condition and sends address. The slave acknowledged when the
// returned status reports Acknowledged().
func (s *Session) Start(mode protocol.Mode, ackSuppressed bool, address byte) (pcd8584.BusStatus, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.start(mode, ackSuppressed, address)
}

// Restart generates a repeated start condition without releasing the bus
func (s *Session) Restart(mode protocol.Mode, ackSuppressed bool, address byte) (pcd8584.BusStatus, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.restart(mode, ackSuppressed, address)
}

// Stop generates a stop condition. Stopping twice is harmless.
func (s *Session) Stop() (pcd8584.BusStatus, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.stop()
}

// WriteByte transmits b as master
func (s *Session) WriteByte(b byte) (pcd8584.BusStatus, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.writeByte(b)
}

// ReadByte receives one byte as master.
//
// The PCD8584 returns the byte that was last seen on the bus, so every read lags one
// transfer behind. A read of n bytes therefore starts with one throwaway ReadByte(false),
// followed by n reads with suppressNextAck set only on the last one. ReadBytes does this.
func (s *Session) ReadByte(suppressNextAck bool) (byte, pcd8584.BusStatus, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.readByte(suppressNextAck)
}
