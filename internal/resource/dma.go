// Package resource implements the DMA channel and interrupt-vector
// singleton managers described in spec.md §4.9. Both are process-global
// arbiters over a fixed-capacity pool of records; neither does preemption
// or priority inversion handling, matching the spec's explicit scope cut.
package resource

import (
	"sync"

	"github.com/osalkit/osal/internal/abi"
	"github.com/osalkit/osal/internal/constants"
)

// DMAManager arbitrates a fixed pool of DMA channels.
type DMAManager struct {
	mu       sync.Mutex
	channels []abi.DMAChannel
}

// NewDMAManager constructs a manager with constants.MaxDMAChannels channels
// numbered 0..N-1.
func NewDMAManager() *DMAManager {
	channels := make([]abi.DMAChannel, constants.MaxDMAChannels)
	for i := range channels {
		channels[i].Channel = i
	}
	return &DMAManager{channels: channels}
}

// RequestChannel first-fits a free channel and marks it in-use under owner.
// Direction and priority are recorded for diagnostics only; this manager
// does not preempt a lower-priority holder for a higher-priority request.
func (m *DMAManager) RequestChannel(direction abi.DMADirection, priority int, owner string) (int, abi.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.channels {
		if !m.channels[i].InUse {
			m.channels[i].InUse = true
			m.channels[i].Direction = direction
			m.channels[i].Priority = priority
			m.channels[i].Owner = owner
			return m.channels[i].Channel, abi.OK
		}
	}
	return -1, abi.NoResource
}

// ReleaseChannel clears the in-use flag on the given channel number.
func (m *DMAManager) ReleaseChannel(channel int) abi.Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if channel < 0 || channel >= len(m.channels) {
		return abi.InvalidParam
	}
	if !m.channels[channel].InUse {
		return abi.InvalidState
	}
	m.channels[channel] = abi.DMAChannel{Channel: channel}
	return abi.OK
}

// Channel returns a snapshot of the given channel's current record.
func (m *DMAManager) Channel(channel int) (abi.DMAChannel, abi.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if channel < 0 || channel >= len(m.channels) {
		return abi.DMAChannel{}, abi.InvalidParam
	}
	return m.channels[channel], abi.OK
}
