package pcd8584

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeSingleFlags(t *testing.T) {
	tests := []struct {
		in   byte
		want BusStatus
	}{
		{MaskPIN, BusStatus{Raw: MaskPIN, PIN: true}},
		{MaskSTS, BusStatus{Raw: MaskSTS, STS: true}},
		{MaskBER, BusStatus{Raw: MaskBER, BER: true}},
		{0x08, BusStatus{Raw: 0x08, AD0LRB: true}},
		{MaskAAS, BusStatus{Raw: MaskAAS, AAS: true}},
		{MaskLAB, BusStatus{Raw: MaskLAB, LAB: true}},
		{MaskBB, BusStatus{Raw: MaskBB, BB: true}},
		{0x40, BusStatus{Raw: 0x40}},
	}

	for _, test := range tests {
		if diff := cmp.Diff(test.want, Decode(test.in)); diff != "" {
			t.Errorf("Decode(0x%02x) mismatch (-want +got):\n%s", test.in, diff)
		}
	}
}

func TestDecodeAll(t *testing.T) {
	s := Decode(0xFF)
	if !s.PIN || !s.STS || !s.BER || !s.AD0LRB || !s.AAS || !s.LAB || !s.BB {
		t.Error("Not all flags were set for 0xFF", s)
	}

	s = Decode(0)
	if s.PIN || s.STS || s.BER || s.AD0LRB || s.AAS || s.LAB || s.BB {
		t.Error("Flags were set for 0x00", s)
	}
}

func TestAccessors(t *testing.T) {
	s := Decode(MaskAD0LRB | MaskBB)
	if !s.Acknowledged() || !s.BusFree() || s.ArbitrationLost() || s.BusError() || s.Pending() {
		t.Error("Accessors disagree with flags", s)
	}
	if s.Err() != nil {
		t.Error("Err returned an error for a clean status")
	}

	if Decode(MaskLAB|MaskBER).Err() != ErrorArbitrationLost {
		t.Error("Arbitration loss should take precedence")
	}
	if Decode(MaskBER).Err() != ErrorBusError {
		t.Error("Bus error not reported")
	}
}

func TestString(t *testing.T) {
	want := "0x89: PIN: 1, STS: 0, BER: 0, AD0LRB: 1, AAS: 0, LAB: 0, BB: 1"
	if got := Decode(0x89).String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
