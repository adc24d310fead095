package protocol

import "fmt"

// CommandFrame is a complete two byte command
type CommandFrame [2]byte

// Opcode returns the command character
func (f CommandFrame) Opcode() Opcode {
	return Opcode(f[0])
}

// Operand returns the second byte of the frame
func (f CommandFrame) Operand() byte {
	return f[1]
}

// Bytes returns the frame as it goes on the wire
func (f CommandFrame) Bytes() []byte {
	return []byte{f[0], f[1]}
}

func (f CommandFrame) String() string {
	return fmt.Sprintf("%v 0x%02X", f.Opcode(), f[1])
}

func frame(op Opcode, operand byte) CommandFrame {
	return CommandFrame{byte(op), operand}
}

func startOpcode(mode Mode, ackSuppressed bool, write, read, readNoAck Opcode) Opcode {
	if mode == Read {
		if ackSuppressed {
			return readNoAck
		}
		return read
	}
	return write
}

// EncodeStart builds a start condition followed by the address byte. ackSuppressed only
// has a meaning for reads.
func EncodeStart(mode Mode, ackSuppressed bool, address byte) CommandFrame {
	return frame(startOpcode(mode, ackSuppressed, OpStartWrite, OpStartRead, OpStartReadNoAck), address)
}

// EncodeRestart builds a repeated start condition
func EncodeRestart(mode Mode, ackSuppressed bool, address byte) CommandFrame {
	return frame(startOpcode(mode, ackSuppressed, OpRestartWrite, OpRestartRead, OpRestartReadNoAck), address)
}

// ParseStart maps a start or restart opcode back to its parameters
func ParseStart(op Opcode) (mode Mode, ackSuppressed bool, restart bool, ok bool) {
	switch op {
	case OpStartWrite:
		return Write, false, false, true
	case OpStartRead:
		return Read, false, false, true
	case OpStartReadNoAck:
		return Read, true, false, true
	case OpRestartWrite:
		return Write, false, true, true
	case OpRestartRead:
		return Read, false, true, true
	case OpRestartReadNoAck:
		return Read, true, true, true
	}
	return Write, false, false, false
}

// EncodeStop builds the stop condition command
func EncodeStop() CommandFrame {
	return frame(OpStop, operandStop)
}

// EncodeWriteByte transmits b as master
func EncodeWriteByte(b byte) CommandFrame {
	return frame(OpWriteByte, b)
}

// EncodeReadByte receives one byte as master. With suppressNextAck the controller
// answers the next byte with a negative acknowledge, which tells the slave to release the bus.
func EncodeReadByte(suppressNextAck bool) CommandFrame {
	if suppressNextAck {
		return frame(OpReadByte, operandReadNoAck)
	}
	return frame(OpReadByte, operandReadAck)
}

// EncodePortWrite sets the adapter's 8 bit IO port
func EncodePortWrite(b byte) CommandFrame {
	return frame(OpPortWrite, b)
}

// EncodePortRead samples the adapter's IO port
func EncodePortRead() CommandFrame {
	return frame(OpPortRead, operandPortRead)
}

func onOff(on bool) byte {
	if on {
		return operandOn
	}
	return operandOff
}

// EncodeRelay switches the relay for the auxiliary bus supply
func EncodeRelay(on bool) CommandFrame {
	return frame(OpRelay, onOff(on))
}

// EncodeLed switches the red LED
func EncodeLed(on bool) CommandFrame {
	return frame(OpLed, onOff(on))
}

// EncodeReset resets the adapter
func EncodeReset() CommandFrame {
	return frame(OpReset, operandReset)
}

// EncodeClock selects the SCL frequency. The code is not validated.
func EncodeClock(c ClockSpeed) CommandFrame {
	return frame(OpClock, byte(c))
}
