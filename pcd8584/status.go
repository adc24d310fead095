// Package pcd8584 interprets the status register of the Philips PCD8584 I2C bus controller.
//
// Bit | Name    | Meaning
// ----+---------+------------------------------------------------------
//  7  | PIN     | transfer pending, should read 0 after a completed transfer
//  6  |         | always 0
//  5  | STS     | external stop condition observed
//  4  | BER     | bus error: misplaced start or stop
//  3  | AD0/LRB | if AAS=0: last received bit, i.e. the acknowledge bit
//  2  | AAS     | addressed as slave
//  1  | LAB     | lost arbitration
//  0  | BB-     | bus busy (inverted), 1 = bus free
package pcd8584

import "fmt"

// Status register masks
const (
	MaskPIN    byte = 1 << 7
	MaskSTS    byte = 1 << 5
	MaskBER    byte = 1 << 4
	MaskAD0LRB byte = 1 << 3
	MaskAAS    byte = 1 << 2
	MaskLAB    byte = 1 << 1
	MaskBB     byte = 1 << 0
)

// BusStatus is the decoded form of a status byte. Raw keeps the byte that was received.
type BusStatus struct {
	Raw byte

	PIN    bool
	STS    bool
	BER    bool
	AD0LRB bool
	AAS    bool
	LAB    bool
	BB     bool
}

// Decode splits a status byte into its flags
func Decode(status byte) BusStatus {
	return BusStatus{
		Raw:    status,
		PIN:    status&MaskPIN != 0,
		STS:    status&MaskSTS != 0,
		BER:    status&MaskBER != 0,
		AD0LRB: status&MaskAD0LRB != 0,
		AAS:    status&MaskAAS != 0,
		LAB:    status&MaskLAB != 0,
		BB:     status&MaskBB != 0,
	}
}

// Acknowledged reports whether the last transfer was acknowledged. The adapter
// reports the acknowledge through AD0/LRB.
func (s BusStatus) Acknowledged() bool {
	return s.AD0LRB
}

// BusFree reports whether the bus is idle (BB- is active low busy)
func (s BusStatus) BusFree() bool {
	return s.BB
}

// ArbitrationLost reports whether another master took the bus
func (s BusStatus) ArbitrationLost() bool {
	return s.LAB
}

// BusError reports a misplaced start or stop condition
func (s BusStatus) BusError() bool {
	return s.BER
}

// Pending reports whether the controller still has a transfer in progress
func (s BusStatus) Pending() bool {
	return s.PIN
}

// Err converts the electrical bus conditions into an error. It is meant for helpers that
// implement a caller policy; the primitives themselves never fail on these.
// A missing acknowledge is not checked here since its meaning depends on the transfer.
func (s BusStatus) Err() error {
	switch {
	case s.LAB:
		return ErrorArbitrationLost
	case s.BER:
		return ErrorBusError
	}
	return nil
}

func bit(v bool) int {
	if v {
		return 1
	}
	return 0
}

func (s BusStatus) String() string {
	return fmt.Sprintf("0x%02X: PIN: %d, STS: %d, BER: %d, AD0LRB: %d, AAS: %d, LAB: %d, BB: %d",
		s.Raw, bit(s.PIN), bit(s.STS), bit(s.BER), bit(s.AD0LRB), bit(s.AAS), bit(s.LAB), bit(s.BB))
}

// Error is a bus condition turned into an error value
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrorArbitrationLost = Error("Arbitration lost")
	ErrorBusError        = Error("Bus error")
)
