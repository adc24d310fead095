package emulator

import "sync"

// Memory is a target with 256 byte registers. The first byte written after addressing
// selects the register, further writes store data; reads and writes auto-increment.
type Memory struct {
	mutex sync.Mutex

	data   [256]byte
	reg    byte
	gotReg bool

	// Stops counts completed transactions
	stops int
}

// NewMemory returns a memory target preloaded with init
func NewMemory(init []byte) *Memory {
	m := &Memory{}
	copy(m.data[:], init)
	return m
}

func (m *Memory) Start(read bool) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !read {
		m.gotReg = false
	}
	return true
}

func (m *Memory) Write(b byte) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.gotReg {
		m.reg = b
		m.gotReg = true
		return true
	}

	m.data[m.reg] = b
	m.reg++
	return true
}

func (m *Memory) Read(ack bool) byte {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	b := m.data[m.reg]
	m.reg++
	return b
}

func (m *Memory) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.stops++
}

// Bytes returns a copy of n registers starting at reg
func (m *Memory) Bytes(reg byte, n int) []byte {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	out := make([]byte, n)
	for i := range out {
		out[i] = m.data[byte(int(reg)+i)]
	}
	return out
}

// Stops returns how many times the target saw the end of a transaction
func (m *Memory) Stops() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.stops
}
