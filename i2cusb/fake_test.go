package i2cusb

import (
	"io/ioutil"
	"sync"
	"testing"

	"github.com/BertoldVdb/go-i2cusb/i2cusb/protocol"
	"github.com/sirupsen/logrus"
)

// scriptedPort records every frame written and answers each with the next canned reply.
// A Read with nothing pending returns no data, which the session sees as a timeout.
type scriptedPort struct {
	mutex sync.Mutex

	sent    []string
	replies [][]byte
	pending []byte
	closed  bool
}

func newScriptedPort(replies ...[]byte) *scriptedPort {
	return &scriptedPort{replies: replies}
}

func (p *scriptedPort) Write(b []byte) (int, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.sent = append(p.sent, string(b))
	if len(p.replies) > 0 {
		p.pending = append(p.pending, p.replies[0]...)
		p.replies = p.replies[1:]
	}
	return len(b), nil
}

func (p *scriptedPort) Read(b []byte) (int, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

func (p *scriptedPort) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.closed = true
	return nil
}

func (p *scriptedPort) queue(replies ...[]byte) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.replies = append(p.replies, replies...)
}

func (p *scriptedPort) takeSent() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	sent := p.sent
	p.sent = nil
	return sent
}

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)
	logger.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(logger)
}

func frame(b ...byte) []byte {
	return b
}

// readySession returns an initialized session on a scripted port with the handshake
// already consumed
func readySession(t *testing.T, replies ...[]byte) (*Session, *scriptedPort) {
	port := newScriptedPort([]byte("XX"), []byte("CA"))
	s := New(&Options{Logger: testLogger(), Name: "scripted"})

	if err := s.Initialize(port, protocol.Clock90kHz); err != nil {
		t.Fatal("Initialize failed", err)
	}

	port.takeSent()
	port.queue(replies...)
	return s, port
}
