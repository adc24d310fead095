package bidirpipe

import (
	"time"

	"github.com/BertoldVdb/go-i2cusb/bufferedpipe"
)

// PipeReadWriteCloser is one end of a duplex in-memory link
type PipeReadWriteCloser struct {
	writer *bufferedpipe.BufferedPipe
	reader *bufferedpipe.BufferedPipe
}

// Close closes both directions, so the other end sees ErrorClosed as well
func (p *PipeReadWriteCloser) Close() error {
	p.writer.Close()
	p.reader.Close()

	return nil
}

func (p *PipeReadWriteCloser) Read(buf []byte) (int, error) {
	return p.reader.Read(buf)
}

func (p *PipeReadWriteCloser) Write(buf []byte) (int, error) {
	return p.writer.Write(buf)
}

// SetReadTimeout changes how long Read on this end waits. Zero waits forever.
func (p *PipeReadWriteCloser) SetReadTimeout(timeout time.Duration) {
	p.reader.SetReadTimeout(timeout)
}

// Flush drops everything this end has not read yet
func (p *PipeReadWriteCloser) Flush() error {
	p.reader.Clear()
	return nil
}

// CreateBidirPipe returns two connected ends. capacity bounds each direction, zero or
// less means unbounded.
func CreateBidirPipe(capacity int) (*PipeReadWriteCloser, *PipeReadWriteCloser) {
	p1 := bufferedpipe.NewBufferedPipe(capacity)
	p2 := bufferedpipe.NewBufferedPipe(capacity)

	part1 := &PipeReadWriteCloser{}
	part1.writer = p1
	part1.reader = p2

	part2 := &PipeReadWriteCloser{}
	part2.writer = p2
	part2.reader = p1

	return part1, part2
}
