package osal

import (
	"github.com/osalkit/osal/internal/abi"
)

// DeviceDescriptor is the immutable (name, config, state, init) tuple a
// platform registers at startup (spec.md §4.8). Config is opaque to the
// registry; Init receives the descriptor itself so it can reach both
// Config and State.
type DeviceDescriptor = abi.DeviceDescriptor

// DeviceState is the mutable half of a descriptor: whether Init has run,
// its result, and the cached API value.
type DeviceState = abi.DeviceState

// RegisterDevice adds d to s's device table. Registration does not run
// Init; the first Find or Get call does, lazily.
func (s *System) RegisterDevice(d *DeviceDescriptor) { s.Devices.Register(d) }

// FindDevice looks up a device descriptor by name without triggering init.
func (s *System) FindDevice(name string) (*DeviceDescriptor, Status) { return s.Devices.Find(name) }

// GetDevice looks up a device by name, running its Init function until it
// first succeeds (one caller at a time, even under concurrent callers) and
// returning the cached API value on every call thereafter. A failed Init is
// not cached.
func (s *System) GetDevice(name string) (any, Status) { return s.Devices.Get(name) }

// RequestDMAChannel reserves a free channel for the given direction and
// priority, tagging it with owner for diagnostics (spec.md §4.9).
func (s *System) RequestDMAChannel(direction abi.DMADirection, priority int, owner string) (int, Status) {
	return s.DMA.RequestChannel(direction, priority, owner)
}

// ReleaseDMAChannel frees a previously requested channel.
func (s *System) ReleaseDMAChannel(channel int) Status { return s.DMA.ReleaseChannel(channel) }

// DMAChannelState returns a snapshot of a channel's current record.
func (s *System) DMAChannelState(channel int) (abi.DMAChannel, Status) { return s.DMA.Channel(channel) }

// RegisterInterrupt installs handler at irq (spec.md §4.9), replacing any
// existing registration there.
func (s *System) RegisterInterrupt(irq int, handler func(irq int, userData any), userData any, priority int) Status {
	return s.Interrupts.Register(irq, handler, userData, priority)
}

// UnregisterInterrupt clears the entry at irq.
func (s *System) UnregisterInterrupt(irq int) Status { return s.Interrupts.Unregister(irq) }

// DispatchInterrupt invokes the handler registered at irq, if any and
// enabled. Intended to be called from a platform's vector trampoline, not
// application code.
func (s *System) DispatchInterrupt(irq int) Status { return s.Interrupts.Dispatch(irq) }

// SetInterruptEnabled toggles delivery for irq without clearing its
// handler.
func (s *System) SetInterruptEnabled(irq int, enabled bool) Status {
	return s.Interrupts.SetEnabled(irq, enabled)
}

// package-level convenience wrappers over Default().

func RegisterDevice(d *DeviceDescriptor) { Default().RegisterDevice(d) }
func FindDevice(name string) (*DeviceDescriptor, Status) { return Default().FindDevice(name) }
func GetDevice(name string) (any, Status) { return Default().GetDevice(name) }
