package protocol

import "fmt"

// ResponseFrame is a validated response to a bus command
type ResponseFrame struct {
	Opcode     Opcode
	HasPayload bool
	Payload    byte
	Status     byte
}

func (r ResponseFrame) String() string {
	if r.HasPayload {
		return fmt.Sprintf("%v 0x%02X status 0x%02X", r.Opcode, r.Payload, r.Status)
	}
	return fmt.Sprintf("%v status 0x%02X", r.Opcode, r.Status)
}

// checkFrame validates length first and the echoed opcode second. A short or
// mismatched frame makes the remaining bytes meaningless.
func checkFrame(buf []byte, expected Opcode, length int) error {
	if len(buf) < length {
		return newFrameError(ShortRead, expected, buf, length)
	}
	if Opcode(buf[0]) != expected {
		return newFrameError(OpcodeMismatch, expected, buf, length)
	}
	return nil
}

// DecodeResponse parses the response to a bus command. The status byte is the last byte;
// with hasPayload the data byte sits between the opcode and the status.
func DecodeResponse(buf []byte, expected Opcode, hasPayload bool) (ResponseFrame, error) {
	length := 2
	if hasPayload {
		length = 3
	}

	if err := checkFrame(buf, expected, length); err != nil {
		return ResponseFrame{}, err
	}

	r := ResponseFrame{
		Opcode:     expected,
		HasPayload: hasPayload,
		Status:     buf[length-1],
	}
	if hasPayload {
		r.Payload = buf[1]
	}

	return r, nil
}

// ExpectPayload checks that the payload repeats what was sent
func (r ResponseFrame) ExpectPayload(want byte) error {
	if !r.HasPayload || r.Payload != want {
		return newFrameError(EchoMismatch, r.Opcode, []byte{byte(r.Opcode), r.Payload, r.Status}, 3)
	}
	return nil
}

// DecodeEcho validates a response that has to repeat the command byte for byte
func DecodeEcho(buf []byte, cmd CommandFrame) error {
	if err := checkFrame(buf, cmd.Opcode(), 2); err != nil {
		return err
	}
	if buf[1] != cmd.Operand() {
		return newFrameError(EchoMismatch, cmd.Opcode(), buf, 2)
	}
	return nil
}

// DecodeValue parses a two byte response carrying a value instead of a status
func DecodeValue(buf []byte, expected Opcode) (byte, error) {
	if err := checkFrame(buf, expected, 2); err != nil {
		return 0, err
	}
	return buf[1], nil
}
