package resource

import (
	"sync"

	"github.com/osalkit/osal/internal/abi"
	"github.com/osalkit/osal/internal/constants"
)

// InterruptManager is the singleton interrupt-vector table: one entry per
// IRQ number, dispatched from the platform's vector trampoline.
type InterruptManager struct {
	mu      sync.RWMutex
	vectors []abi.ISREntry
}

// NewInterruptManager constructs a manager sized per
// constants.MaxInterruptVecs.
func NewInterruptManager() *InterruptManager {
	return &InterruptManager{vectors: make([]abi.ISREntry, constants.MaxInterruptVecs)}
}

// Register installs handler at irq, enabling the vector. Re-registration
// replaces the existing entry (spec.md §4.9).
func (m *InterruptManager) Register(irq int, handler func(irq int, userData any), userData any, priority int) abi.Status {
	if irq < 0 || irq >= len(m.vectors) {
		return abi.InvalidParam
	}
	if handler == nil {
		return abi.NullPointer
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[irq] = abi.ISREntry{
		IRQ:      irq,
		Handler:  handler,
		UserData: userData,
		Priority: priority,
		Enabled:  true,
	}
	return abi.OK
}

// Unregister disables and clears the entry at irq.
func (m *InterruptManager) Unregister(irq int) abi.Status {
	if irq < 0 || irq >= len(m.vectors) {
		return abi.InvalidParam
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[irq] = abi.ISREntry{IRQ: irq}
	return abi.OK
}

// Dispatch forwards to the handler registered at irq, if any and enabled.
// Called from the platform's vector trampoline; returns abi.NotSupported
// when nothing is registered so the caller can distinguish a spurious
// interrupt from a genuine dispatch.
func (m *InterruptManager) Dispatch(irq int) abi.Status {
	if irq < 0 || irq >= len(m.vectors) {
		return abi.InvalidParam
	}

	m.mu.RLock()
	entry := m.vectors[irq]
	m.mu.RUnlock()

	if !entry.Enabled || entry.Handler == nil {
		return abi.NotSupported
	}
	entry.Handler(entry.IRQ, entry.UserData)
	return abi.OK
}

// SetEnabled toggles delivery for irq without clearing its handler.
func (m *InterruptManager) SetEnabled(irq int, enabled bool) abi.Status {
	if irq < 0 || irq >= len(m.vectors) {
		return abi.InvalidParam
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[irq].Enabled = enabled
	return abi.OK
}
