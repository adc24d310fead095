package protocol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeFixed(t *testing.T) {
	tests := []struct {
		name string
		got  CommandFrame
		want string
	}{
		{"stop", EncodeStop(), "OP"},
		{"readAck", EncodeReadByte(false), "R1"},
		{"readNoAck", EncodeReadByte(true), "R0"},
		{"portRead", EncodePortRead(), "DD"},
		{"relayOn", EncodeRelay(true), "P1"},
		{"relayOff", EncodeRelay(false), "P0"},
		{"ledOn", EncodeLed(true), "L1"},
		{"ledOff", EncodeLed(false), "L0"},
		{"reset", EncodeReset(), "XX"},
		{"clock", EncodeClock(Clock11kHz), "CC"},
	}

	for _, test := range tests {
		if string(test.got.Bytes()) != test.want {
			t.Errorf("%s: got %q, want %q", test.name, test.got.Bytes(), test.want)
		}
	}
}

func TestEncodeData(t *testing.T) {
	if diff := cmp.Diff([]byte{'N', 0x42}, EncodeWriteByte(0x42).Bytes()); diff != "" {
		t.Error("Write byte frame wrong:", diff)
	}
	if diff := cmp.Diff([]byte{'W', 0xA5}, EncodePortWrite(0xA5).Bytes()); diff != "" {
		t.Error("Port write frame wrong:", diff)
	}
}

func TestStartOpcodeTable(t *testing.T) {
	type params struct {
		Mode          Mode
		AckSuppressed bool
	}

	tests := []struct {
		p       params
		start   Opcode
		restart Opcode
	}{
		{params{Write, false}, 'T', 'U'},
		{params{Read, false}, 'S', 'V'},
		{params{Read, true}, 's', 'v'},
	}

	for _, test := range tests {
		f := EncodeStart(test.p.Mode, test.p.AckSuppressed, 0x42)
		if f.Opcode() != test.start || f.Operand() != 0x42 {
			t.Errorf("EncodeStart(%v) = %v, want %v", test.p, f, test.start)
		}

		mode, ackSuppressed, restart, ok := ParseStart(f.Opcode())
		if !ok || restart {
			t.Errorf("ParseStart(%v) did not recognise a start", f.Opcode())
		}
		if diff := cmp.Diff(test.p, params{mode, ackSuppressed}); diff != "" {
			t.Errorf("Start round trip failed for %v: %s", f.Opcode(), diff)
		}

		f = EncodeRestart(test.p.Mode, test.p.AckSuppressed, 0x10)
		if f.Opcode() != test.restart || f.Operand() != 0x10 {
			t.Errorf("EncodeRestart(%v) = %v, want %v", test.p, f, test.restart)
		}

		mode, ackSuppressed, restart, ok = ParseStart(f.Opcode())
		if !ok || !restart {
			t.Errorf("ParseStart(%v) did not recognise a restart", f.Opcode())
		}
		if diff := cmp.Diff(test.p, params{mode, ackSuppressed}); diff != "" {
			t.Errorf("Restart round trip failed for %v: %s", f.Opcode(), diff)
		}
	}

	/* Suppressing the acknowledge has no meaning when writing */
	if EncodeStart(Write, true, 0).Opcode() != OpStartWrite {
		t.Error("Write start with suppressed ack changed opcode")
	}

	if _, _, _, ok := ParseStart(OpStop); ok {
		t.Error("Stop was parsed as a start")
	}
}

func TestClockSpeeds(t *testing.T) {
	want := map[ClockSpeed]uint32{'A': 90000, 'B': 45000, 'C': 11000, 'D': 1500}

	for _, c := range ClockSpeeds {
		if !c.Valid() {
			t.Error("Clock not valid", c)
		}
		if c.Hertz() != want[c] {
			t.Errorf("%v: got %d Hz, want %d", c, c.Hertz(), want[c])
		}
	}

	for _, c := range []ClockSpeed{0, 'E', 'a', '@'} {
		if c.Valid() || c.Hertz() != 0 {
			t.Error("Invalid clock accepted", c)
		}
	}
}

func TestResponseLength(t *testing.T) {
	for _, op := range []Opcode{OpStartWrite, OpRestartRead, OpStop, OpPortRead, OpPortWrite, OpRelay, OpLed, OpReset, OpClock} {
		if ResponseLength(op) != 2 {
			t.Error("Expected two byte response for", op)
		}
	}
	if ResponseLength(OpReadByte) != 3 || ResponseLength(OpWriteByte) != 3 {
		t.Error("Byte transfers should have three byte responses")
	}
}
