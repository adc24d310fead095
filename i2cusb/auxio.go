package i2cusb

import "github.com/BertoldVdb/go-i2cusb/i2cusb/protocol"

// SetRelay switches the relay for the auxiliary bus supply
func (s *Session) SetRelay(on bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.echoCommand("relay", protocol.EncodeRelay(on))
}

// SetLed switches the red LED on the adapter
func (s *Session) SetLed(on bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.echoCommand("led", protocol.EncodeLed(on))
}

// WritePort drives the adapter's 8 bit IO port
func (s *Session) WritePort(b byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.echoCommand("port write", protocol.EncodePortWrite(b))
}

// ReadPort samples the adapter's 8 bit IO port
func (s *Session) ReadPort() (byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.checkReady(); err != nil {
		return 0, err
	}

	cmd := protocol.EncodePortRead()
	rx, err := s.exchange("port read", cmd)
	if err != nil {
		return 0, err
	}

	value, err := protocol.DecodeValue(rx, cmd.Opcode())
	if err != nil {
		return 0, s.violation("port read", err)
	}
	return value, nil
}
