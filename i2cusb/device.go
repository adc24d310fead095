package i2cusb

// Device is a slave on the bus behind a session
type Device struct {
	session *Session
	address uint8
}

// GetDevice returns a handle for the slave at the 7 bit address
func (s *Session) GetDevice(address uint8) *Device {
	return &Device{
		session: s,
		address: address,
	}
}

// Address returns the 7 bit slave address
func (d *Device) Address() uint8 {
	return d.address
}

func (d *Device) Transfer(writeBuf []byte, readBuf []byte) error {
	return d.session.Transfer(d.address, writeBuf, readBuf)
}

// Present reports whether the device acknowledges its address
func (d *Device) Present() (bool, error) {
	return d.session.Probe(d.address)
}

func (d *Device) WriteReg8(reg uint8, value uint8) error {
	write := []byte{reg, value}
	return d.Transfer(write, nil)
}

func (d *Device) ReadReg8(reg uint8) (uint8, error) {
	write := []byte{reg}
	read := make([]byte, 1)
	err := d.Transfer(write, read)
	if err != nil {
		return 0, err
	}
	return read[0], nil
}

// ReadReg16 reads a big endian register pair starting at reg
func (d *Device) ReadReg16(reg uint8) (uint16, error) {
	read := make([]byte, 2)
	if err := d.Transfer([]byte{reg}, read); err != nil {
		return 0, err
	}
	return uint16(read[0])<<8 | uint16(read[1]), nil
}
