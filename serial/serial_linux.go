package serial

import (
	"io"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

type serialPortLinux struct {
	file      *os.File
	name      string
	closeChan chan (struct{})
}

func (port *serialPortLinux) fd() int {
	return int(port.file.Fd())
}

func (port *serialPortLinux) setFlowControl(enabled bool) error {
	termios, err := unix.IoctlGetTermios(port.fd(), unix.TCGETS2)
	if err != nil {
		return err
	}

	if enabled {
		termios.Cflag |= unix.CRTSCTS
	} else {
		termios.Cflag &= ^uint32(unix.CRTSCTS)
	}

	return unix.IoctlSetTermios(port.fd(), unix.TCSETS2, termios)
}

func (port *serialPortLinux) SetInterfaceRate(rate uint32) error {
	termios, err := unix.IoctlGetTermios(port.fd(), unix.TCGETS2)
	if err != nil {
		return err
	}

	termios.Cflag &= ^uint32(unix.CBAUD)
	termios.Cflag |= uint32(unix.BOTHER)
	termios.Ispeed = rate
	termios.Ospeed = rate

	return unix.IoctlSetTermios(port.fd(), unix.TCSETS2, termios)
}

func (port *serialPortLinux) SetReadTimeout(timeout time.Duration) error {
	termios, err := unix.IoctlGetTermios(port.fd(), unix.TCGETS2)
	if err != nil {
		return err
	}

	/* Return as soon as one byte is there, or after VTIME without any */
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = deciseconds(timeout)

	return unix.IoctlSetTermios(port.fd(), unix.TCSETS2, termios)
}

func (port *serialPortLinux) Flush() error {
	return unix.IoctlSetInt(port.fd(), unix.TCFLSH, unix.TCIOFLUSH)
}

func (port *serialPortLinux) Name() string {
	return port.name
}

func (port *serialPortLinux) defaultPortConfig() error {
	termios := &unix.Termios{}
	/* Raw 8N1, no software flow control, no echo, no signals */
	termios.Cflag |= uint32(syscall.CS8 | syscall.CLOCAL | syscall.CREAD)

	termios.Cc[syscall.VTIME] = deciseconds(DefaultReadTimeout)
	termios.Cc[syscall.VMIN] = 0

	return unix.IoctlSetTermios(port.fd(), unix.TCSETS2, termios)
}

func openPortOs(options *PortOptions) (*serialPortLinux, error) {
	file, err := os.OpenFile(options.PortName, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0600)
	if err != nil {
		return nil, err
	}

	port := &serialPortLinux{}
	port.file = file
	port.name = options.PortName
	port.closeChan = make(chan (struct{}), 1)
	port.closeChan <- struct{}{}

	/* Set default termios */
	err = port.defaultPortConfig()
	if err != nil {
		goto failed
	}

	err = port.SetInterfaceRate(options.InterfaceRate)
	if err != nil {
		goto failed
	}

	err = port.setFlowControl(options.FlowControl)
	if err != nil {
		goto failed
	}

	err = port.SetReadTimeout(options.ReadTimeout)
	if err != nil {
		goto failed
	}

	err = unix.SetNonblock(port.fd(), false)
	if err != nil {
		goto failed
	}

	/* Drop whatever the adapter sent before we opened it */
	err = port.Flush()
	if err != nil {
		goto failed
	}

	return port, nil

failed:
	file.Close()
	return nil, err
}

// Read returns ErrorTimeout when VTIME expired without data. The kernel reports that
// as a zero length read, which os.File turns into io.EOF.
func (port *serialPortLinux) Read(p []byte) (int, error) {
	token, ok := <-port.closeChan
	if !ok {
		return 0, ErrorClosed
	}

	n, err := port.file.Read(p)
	port.closeChan <- token

	if err == io.EOF {
		return n, ErrorTimeout
	}
	return n, err
}

func (port *serialPortLinux) Write(p []byte) (int, error) {
	return port.file.Write(p)
}

func (port *serialPortLinux) Close() error {
	_, ok := <-port.closeChan
	if ok {
		close(port.closeChan)
		return port.file.Close()
	}

	return nil
}
