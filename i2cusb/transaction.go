package i2cusb

import (
	"github.com/BertoldVdb/go-i2cusb/i2cusb/protocol"
	"github.com/BertoldVdb/go-i2cusb/pcd8584"
)

// Scan range, reserved addresses excluded
const (
	scanFirst = 0x08
	scanLast  = 0x77
)

// checkStatus turns the bus conditions of a transfer into an error. Non-final reads and
// all writes must be acknowledged.
func checkStatus(status pcd8584.BusStatus, addr byte, index int, needAck bool) error {
	if err := status.Err(); err != nil {
		return err
	}
	if needAck && !status.Acknowledged() {
		return &NackError{Addr: addr, Index: index}
	}
	return nil
}

// abort releases the bus after a bus condition. Fatal errors are returned as they are since
// there is no usable link left to send a stop over.
func (s *Session) abort(err error) error {
	if IsFatal(err) {
		return err
	}

	if _, stopErr := s.stop(); stopErr != nil {
		s.logger.WithError(stopErr).Debug("Stop after failed transfer failed")
		if IsFatal(stopErr) {
			return stopErr
		}
	}
	return err
}

// readBytes reads len(buf) bytes from a slave that is already addressed for reading
func (s *Session) readBytes(addr byte, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	/* Prime the controller, this returns the address byte */
	_, status, err := s.readByte(false)
	if err != nil {
		return err
	}
	if err := checkStatus(status, addr, -1, false); err != nil {
		return err
	}

	for i := range buf {
		last := i == len(buf)-1

		b, status, err := s.readByte(last)
		if err != nil {
			return err
		}
		buf[i] = b

		if err := checkStatus(status, addr, i, !last); err != nil {
			return err
		}
	}

	return nil
}

func (s *Session) writeBytes(addr byte, data []byte) error {
	for i, b := range data {
		status, err := s.writeByte(b)
		if err != nil {
			return err
		}
		if err := checkStatus(status, addr, i, true); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) transfer(addr byte, w []byte, r []byte) error {
	if addr > 0x7F {
		return ErrorInvalidAddress
	}
	if err := s.checkReady(); err != nil {
		return err
	}
	if len(w) == 0 && len(r) == 0 {
		// A succesful, albeit useless, transfer
		return nil
	}

	if len(w) > 0 {
		status, err := s.start(protocol.Write, false, addr)
		if err == nil {
			err = checkStatus(status, addr, -1, true)
		}
		if err == nil {
			err = s.writeBytes(addr, w)
		}
		if err != nil {
			return s.abort(err)
		}
	}

	if len(r) > 0 {
		var status pcd8584.BusStatus
		var err error
		if len(w) > 0 {
			status, err = s.restart(protocol.Read, false, addr)
		} else {
			status, err = s.start(protocol.Read, false, addr)
		}
		if err == nil {
			err = checkStatus(status, addr, -1, true)
		}
		if err == nil {
			err = s.readBytes(addr, r)
		}
		if err != nil {
			return s.abort(err)
		}
	}

	_, err := s.stop()
	return err
}

// Transfer writes w to the slave at the 7 bit address addr, then reads len(r) bytes back
// after a repeated start, and releases the bus. Either buffer may be empty. The whole
// transaction holds the session.
func (s *Session) Transfer(addr byte, w []byte, r []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.transfer(addr, w, r)
}

// ReadBytes reads len(buf) bytes from a slave that was addressed for reading with Start
// or Restart. It does not generate a stop condition.
func (s *Session) ReadBytes(addr byte, buf []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.readBytes(addr, buf)
}

// ReadFrom reads len(buf) bytes from the slave at addr
func (s *Session) ReadFrom(addr byte, buf []byte) error {
	return s.Transfer(addr, nil, buf)
}

// WriteTo writes data to the slave at addr
func (s *Session) WriteTo(addr byte, data []byte) error {
	return s.Transfer(addr, data, nil)
}

// ReadRegister writes the register number and reads len(buf) bytes starting there
func (s *Session) ReadRegister(addr byte, reg byte, buf []byte) error {
	return s.Transfer(addr, []byte{reg}, buf)
}

// WriteRegister writes data starting at register reg
func (s *Session) WriteRegister(addr byte, reg byte, data []byte) error {
	w := make([]byte, 0, len(data)+1)
	w = append(w, reg)
	w = append(w, data...)
	return s.Transfer(addr, w, nil)
}

func (s *Session) probe(addr byte) (bool, error) {
	status, err := s.start(protocol.Write, false, addr)
	if err != nil {
		return false, err
	}
	if err := status.Err(); err != nil {
		return false, s.abort(err)
	}

	if _, err := s.stop(); err != nil {
		return false, err
	}
	return status.Acknowledged(), nil
}

// Probe addresses a slave for writing and reports whether it acknowledged
func (s *Session) Probe(addr byte) (bool, error) {
	if addr > 0x7F {
		return false, ErrorInvalidAddress
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.checkReady(); err != nil {
		return false, err
	}
	return s.probe(addr)
}

// Scan probes every non reserved address and returns those that acknowledged
func (s *Session) Scan() ([]byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.checkReady(); err != nil {
		return nil, err
	}

	var found []byte
	for addr := byte(scanFirst); addr <= scanLast; addr++ {
		ok, err := s.probe(addr)
		if err != nil {
			return found, err
		}
		if ok {
			found = append(found, addr)
		}
	}
	return found, nil
}
