package osal

import (
	"sync"

	"github.com/osalkit/osal/internal/abi"
	"github.com/osalkit/osal/internal/interfaces"
)

// MockDevice is an in-memory device implementing SyncIO and Lifecycle,
// for use as a DeviceDescriptor's Init-returned API in tests that need a
// registered device without a real platform backend.
type MockDevice struct {
	mu     sync.RWMutex
	data   []byte
	closed bool
	started bool

	readCalls  int
	writeCalls int
}

// NewMockDevice creates a mock device backed by a size-byte in-memory
// buffer.
func NewMockDevice(size int) *MockDevice {
	return &MockDevice{data: make([]byte, size)}
}

// Read implements interfaces.SyncIO.
func (m *MockDevice) Read(p []byte, off int64) (int, abi.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.readCalls++
	if m.closed {
		return 0, abi.InvalidState
	}
	if off < 0 || off >= int64(len(m.data)) {
		return 0, abi.InvalidParam
	}

	n := copy(p, m.data[off:])
	return n, abi.OK
}

// Write implements interfaces.SyncIO.
func (m *MockDevice) Write(p []byte, off int64) (int, abi.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCalls++
	if m.closed {
		return 0, abi.InvalidState
	}
	if off < 0 || off >= int64(len(m.data)) {
		return 0, abi.InvalidParam
	}

	n := copy(m.data[off:], p)
	return n, abi.OK
}

// Start implements interfaces.Lifecycle.
func (m *MockDevice) Start() abi.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return abi.InvalidState
	}
	m.started = true
	return abi.OK
}

// Stop implements interfaces.Lifecycle.
func (m *MockDevice) Stop() abi.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	return abi.OK
}

// Close implements interfaces.Lifecycle.
func (m *MockDevice) Close() abi.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = nil
	return abi.OK
}

// IsStarted reports whether Start has been called more recently than Stop.
func (m *MockDevice) IsStarted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.started
}

// IsClosed reports whether Close has been called.
func (m *MockDevice) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// CallCounts returns the number of Read/Write invocations, for assertions
// in tests that exercise a registered device end to end.
func (m *MockDevice) CallCounts() (reads, writes int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readCalls, m.writeCalls
}

var (
	_ interfaces.SyncIO    = (*MockDevice)(nil)
	_ interfaces.Lifecycle = (*MockDevice)(nil)
)
