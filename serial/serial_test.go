package serial

import (
	"testing"
	"time"
)

func TestPortName(t *testing.T) {
	if PortName(0) != "/dev/ttyUSB0" || PortName(6) != "/dev/ttyUSB6" {
		t.Error("Wrong port name", PortName(0), PortName(6))
	}
}

func TestDeciseconds(t *testing.T) {
	tests := map[time.Duration]uint8{
		0:                       1,
		10 * time.Millisecond:   1,
		time.Second:             10,
		1440 * time.Millisecond: 14,
		5 * time.Second:         50,
		time.Hour:               255,
	}

	for in, want := range tests {
		if got := deciseconds(in); got != want {
			t.Errorf("deciseconds(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestOpenMissing(t *testing.T) {
	port, err := Open(&PortOptions{PortName: "/dev/does-not-exist-i2cusb"})
	if err == nil || port != nil {
		t.Error("Opening a missing device should fail")
	}
}
