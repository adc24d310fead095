package bufferedpipe

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

// BufferedPipe is an io.ReadWriteCloser. What is written via the writer comes out via the Reader.
// A bounded buffer sits in between, writers block while it is full. When a read timeout is set, a
// Read on an empty pipe gives up after that time, the way a serial port with VTIME does.
type BufferedPipe struct {
	sync.Mutex
	buffer bytes.Buffer

	canReadSignal  chan (struct{})
	canWriteSignal chan (struct{})

	maximumCapacity int
	closed          bool
	readTimeout     time.Duration
}

var (
	// ErrorClosed is returned when the caller tries to write to a closed pipe, or tries to read
	// from a closed and empty pipe
	ErrorClosed = errors.New("The pipe is closed")

	// ErrorTimeout is returned by Read when nothing arrived within the read timeout
	ErrorTimeout = errors.New("Pipe read timeout")
)

func signalChannel(c chan (struct{})) {
	select {
	case c <- struct{}{}:
	default:
	}
}

func (b *BufferedPipe) remainingCapacity() int {
	if b.maximumCapacity <= 0 {
		return 0
	}

	result := b.maximumCapacity - b.buffer.Len()
	assert(result >= 0, "Maximum capacity exceeded")
	return result
}

// MaximumCapacity returns the maximum amount of bytes that can be stored in the pipe
func (b *BufferedPipe) MaximumCapacity() int {
	return b.maximumCapacity
}

// Len returns the number of bytes currently stored in the pipe
func (b *BufferedPipe) Len() int {
	b.Lock()
	defer b.Unlock()

	return b.buffer.Len()
}

// Clear drops everything that was not read yet
func (b *BufferedPipe) Clear() {
	b.Lock()
	defer b.Unlock()

	b.buffer.Reset()
	signalChannel(b.canWriteSignal)
}

// SetReadTimeout bounds how long Read waits for the first byte. Zero waits forever.
func (b *BufferedPipe) SetReadTimeout(timeout time.Duration) {
	b.Lock()
	defer b.Unlock()

	b.readTimeout = timeout
}

// Close closes the pipe. Read calls will return ErrorClosed when the pipe is exhausted.
// Write calls will return ErrorClosed right away
func (b *BufferedPipe) Close() error {
	b.Lock()
	defer b.Unlock()

	b.closed = true

	/* Unblock waiting goroutines */
	signalChannel(b.canReadSignal)
	signalChannel(b.canWriteSignal)

	return nil
}

// Write implements io.Writer. It blocks until everything is buffered or the pipe is closed.
func (b *BufferedPipe) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	totalWritten := 0

	for {
		b.Lock()
		if b.closed {
			signalChannel(b.canWriteSignal)
			b.Unlock()
			return totalWritten, ErrorClosed
		}

		k := len(p)
		if b.maximumCapacity > 0 && b.remainingCapacity() < k {
			k = b.remainingCapacity()
		}

		if k > 0 {
			n, err := b.buffer.Write(p[:k])
			assert(err == nil, "bytes.Buffer write returned err != nil. This is not allowed by the documentation")

			p = p[n:]
			totalWritten += n
			signalChannel(b.canReadSignal)
		}

		if len(p) == 0 {
			if b.maximumCapacity <= 0 || b.remainingCapacity() > 0 {
				/* Another goroutine can potentially also write */
				signalChannel(b.canWriteSignal)
			}
			b.Unlock()
			return totalWritten, nil
		}

		b.Unlock()

		<-b.canWriteSignal
	}
}

// Read implements io.Reader
func (b *BufferedPipe) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	b.Lock()
	readTimeout := b.readTimeout
	b.Unlock()

	var timeout <-chan (time.Time)
	if readTimeout > 0 {
		timer := time.NewTimer(readTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		b.Lock()
		n, _ := b.buffer.Read(p)

		if n > 0 {
			if b.buffer.Len() > 0 {
				/* Another goroutine can potentially also read */
				signalChannel(b.canReadSignal)
			}

			signalChannel(b.canWriteSignal)
			b.Unlock()

			return n, nil
		}

		if b.closed {
			signalChannel(b.canReadSignal)
			b.Unlock()
			return 0, ErrorClosed
		}

		b.Unlock()

		select {
		case <-b.canReadSignal:
		case <-timeout:
			return 0, ErrorTimeout
		}
	}
}

// NewBufferedPipe constructs a new pipe with the stated maximum capacity. If maximumCapacity is zero or less, the
// capacity is not bounded.
func NewBufferedPipe(maximumCapacity int) *BufferedPipe {
	return &BufferedPipe{
		maximumCapacity: maximumCapacity,
		canReadSignal:   make(chan (struct{}), 1),
		canWriteSignal:  make(chan (struct{}), 1),
	}
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
