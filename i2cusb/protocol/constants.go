// Package protocol encodes and decodes the frames exchanged with the USB I2C adapter.
//
// Every command is two bytes: an ASCII opcode and an operand. Responses start with the
// echoed opcode. Bus commands end with the PCD8584 status byte; byte transfers carry one
// data byte in between. Auxiliary commands are answered with an echo of the command.
//
// The package does no I/O.
package protocol

import "fmt"

// Opcode is the first byte of a command frame
type Opcode byte

const (
	OpStartWrite       Opcode = 'T'
	OpStartRead        Opcode = 'S'
	OpStartReadNoAck   Opcode = 's'
	OpRestartWrite     Opcode = 'U'
	OpRestartRead      Opcode = 'V'
	OpRestartReadNoAck Opcode = 'v'
	OpStop             Opcode = 'O'
	OpWriteByte        Opcode = 'N'
	OpReadByte         Opcode = 'R'
	OpPortWrite        Opcode = 'W'
	OpPortRead         Opcode = 'D'
	OpRelay            Opcode = 'P'
	OpLed              Opcode = 'L'
	OpReset            Opcode = 'X'
	OpClock            Opcode = 'C'
)

// Fixed operands
const (
	operandStop     = 'P'
	operandPortRead = 'D'
	operandReset    = 'X'
	operandOn       = '1'
	operandOff      = '0'

	// The read command uses '0' to request a negative acknowledge
	operandReadNoAck = '0'
	operandReadAck   = '1'
)

func (o Opcode) String() string {
	if o >= 0x20 && o < 0x7F {
		return fmt.Sprintf("'%c'", byte(o))
	}
	return fmt.Sprintf("0x%02X", byte(o))
}

// ResponseLength returns the number of bytes the adapter sends back for a command
func ResponseLength(op Opcode) int {
	switch op {
	case OpReadByte, OpWriteByte:
		return 3
	}
	return 2
}

// Mode selects the direction of a start or restart condition
type Mode int

const (
	Write Mode = iota
	Read
)

func (m Mode) String() string {
	switch m {
	case Write:
		return "write"
	case Read:
		return "read"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ClockSpeed is the SCL frequency code handed to the PCD8584
type ClockSpeed byte

const (
	Clock90kHz  ClockSpeed = 'A'
	Clock45kHz  ClockSpeed = 'B'
	Clock11kHz  ClockSpeed = 'C'
	Clock1500Hz ClockSpeed = 'D'
)

// ClockSpeeds lists the valid codes from fast to slow
var ClockSpeeds = []ClockSpeed{Clock90kHz, Clock45kHz, Clock11kHz, Clock1500Hz}

// Valid reports whether c is one of the four codes the adapter accepts
func (c ClockSpeed) Valid() bool {
	return c >= Clock90kHz && c <= Clock1500Hz
}

// Hertz returns the nominal SCL frequency, or 0 for an invalid code
func (c ClockSpeed) Hertz() uint32 {
	switch c {
	case Clock90kHz:
		return 90000
	case Clock45kHz:
		return 45000
	case Clock11kHz:
		return 11000
	case Clock1500Hz:
		return 1500
	}
	return 0
}

func (c ClockSpeed) String() string {
	switch c {
	case Clock90kHz:
		return "90kHz"
	case Clock45kHz:
		return "45kHz"
	case Clock11kHz:
		return "11kHz"
	case Clock1500Hz:
		return "1.5kHz"
	}
	return fmt.Sprintf("ClockSpeed(0x%02X)", byte(c))
}
