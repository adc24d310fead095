package emulator

import (
	"io"
	"testing"
	"time"

	"github.com/BertoldVdb/go-i2cusb/i2cusb/protocol"
	"github.com/BertoldVdb/go-i2cusb/pcd8584"
	"github.com/google/go-cmp/cmp"
)

func handle(e *Emulator, frame string) []byte {
	return e.Handle(protocol.CommandFrame{frame[0], frame[1]})
}

func TestHandleEcho(t *testing.T) {
	e := New(nil)

	for _, frame := range []string{"XX", "CA", "CD", "P1", "L1", "W\x42"} {
		if diff := cmp.Diff([]byte(frame), handle(e, frame)); diff != "" {
			t.Error(frame, "not echoed (-want +got)\n", diff)
		}
	}

	if !e.Relay() || !e.Led() || e.PortOutput() != 0x42 || e.Clock() != protocol.Clock1500Hz {
		t.Error("State not updated")
	}

	if diff := cmp.Diff([]byte{'C', 0}, handle(e, "CE")); diff != "" {
		t.Error("Invalid clock echoed (-want +got)\n", diff)
	}
	if diff := cmp.Diff([]byte{'?', 'Q'}, handle(e, "Q0")); diff != "" {
		t.Error("Unknown command (-want +got)\n", diff)
	}

	handle(e, "XX")
	if e.Relay() || e.Led() || e.Resets() != 2 {
		t.Error("Reset did not clear the outputs")
	}
}

func TestHandleBusStatus(t *testing.T) {
	e := New(nil)
	e.Attach(0x42, NewMemory(nil))

	if diff := cmp.Diff([]byte{'T', pcd8584.MaskAD0LRB}, handle(e, "T\x42")); diff != "" {
		t.Error("Start (-want +got)\n", diff)
	}
	if !e.BusBusy() {
		t.Error("Bus not busy after start")
	}

	if diff := cmp.Diff([]byte{'N', 0x07, pcd8584.MaskAD0LRB}, handle(e, "N\x07")); diff != "" {
		t.Error("Write (-want +got)\n", diff)
	}
	if diff := cmp.Diff([]byte{'O', pcd8584.MaskBB}, handle(e, "OP")); diff != "" {
		t.Error("Stop (-want +got)\n", diff)
	}

	if diff := cmp.Diff([]byte{'S', 0}, handle(e, "S\x43")); diff != "" {
		t.Error("Start on missing device (-want +got)\n", diff)
	}
	handle(e, "OP")

	e.InjectStatus(pcd8584.MaskBER)
	if diff := cmp.Diff([]byte{'O', pcd8584.MaskBB | pcd8584.MaskBER}, handle(e, "OP")); diff != "" {
		t.Error("Injected status (-want +got)\n", diff)
	}
	if diff := cmp.Diff([]byte{'O', pcd8584.MaskBB}, handle(e, "OP")); diff != "" {
		t.Error("Injection not cleared (-want +got)\n", diff)
	}
}

func TestHandleReadPipeline(t *testing.T) {
	e := New(nil)
	e.Attach(0x42, NewMemory([]byte{0x10, 0x20, 0x30}))

	handle(e, "S\x42")

	/* The first read returns the address byte that was sent */
	if diff := cmp.Diff([]byte{'R', 0x42<<1 | 1, pcd8584.MaskAD0LRB}, handle(e, "R1")); diff != "" {
		t.Error("Priming read (-want +got)\n", diff)
	}
	if diff := cmp.Diff([]byte{'R', 0x10, pcd8584.MaskAD0LRB}, handle(e, "R1")); diff != "" {
		t.Error("First read (-want +got)\n", diff)
	}
	if diff := cmp.Diff([]byte{'R', 0x20, 0}, handle(e, "R0")); diff != "" {
		t.Error("Last read (-want +got)\n", diff)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory([]byte{1, 2, 3})

	m.Start(false)
	m.Write(0xFF)
	m.Write(0xAA)
	m.Write(0xBB)
	m.Stop()

	if diff := cmp.Diff([]byte{0xAA, 0xBB, 2}, m.Bytes(0xFF, 3)); diff != "" {
		t.Error("Registers differ (-want +got)\n", diff)
	}

	/* A read continues where the register pointer is */
	m.Start(true)
	if b := m.Read(false); b != 2 {
		t.Error("Read", b)
	}
	m.Stop()

	if m.Stops() != 2 {
		t.Error("Stops", m.Stops())
	}
}

func TestInjectFaultOrder(t *testing.T) {
	e := New(nil)

	e.InjectFault(func(resp []byte) []byte { return resp[:1] })
	e.InjectFault(func(resp []byte) []byte { return nil })

	if diff := cmp.Diff([]byte{'X'}, handle(e, "XX")); diff != "" {
		t.Error("First fault (-want +got)\n", diff)
	}
	if len(handle(e, "XX")) != 0 {
		t.Error("Second fault not applied")
	}
	if diff := cmp.Diff([]byte("XX"), handle(e, "XX")); diff != "" {
		t.Error("Faults not consumed (-want +got)\n", diff)
	}
}

func TestConnect(t *testing.T) {
	e := New(nil)
	host, done := e.Connect(time.Second)

	if _, err := host.Write([]byte("L1")); err != nil {
		t.Fatal("Write failed", err)
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(host, resp); err != nil {
		t.Fatal("Read failed", err)
	}
	if string(resp) != "L1" {
		t.Error("Unexpected response", resp)
	}

	host.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Error("Serve failed", err)
		}
	case <-time.After(time.Second):
		t.Error("Serve did not return after close")
	}
}
