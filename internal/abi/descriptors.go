package abi

import (
	"sync/atomic"
	"unsafe"
)

// DeviceDescriptor is the immutable triple described in spec.md §3/§4.8:
// a name, a pointer to const configuration, a pointer to mutable per-device
// state, and an init function. On hosts without linker-section support
// (spec.md §9), the device table is a package-level registration slice built
// at init() time instead of a `__device_start`/`__device_end` bracketed
// section; the lookup and lazy-init semantics are identical either way.
type DeviceDescriptor struct {
	Name   string
	Config any
	State  *DeviceState
	Init   func(*DeviceDescriptor) (any, Status)
}

// DeviceState is the mutable half of a device descriptor: whether init has
// run, its result, and the cached API pointer. Per spec.md §3's invariant,
// Initialized implies API != nil && InitResult == OK.
//
// API is written before Initialized is set (release order) so that a
// concurrent reader observing Initialized==true via an acquire load is
// guaranteed to observe a non-nil API (spec.md §5's single-acquire/release
// fence requirement); see internal/backend/barrier.go.
type DeviceState struct {
	initialized uint32 // 0 or 1, accessed only via IsInitialized/MarkInitialized
	InitResult  Status
	API         any
}

// IsInitialized performs an acquire load of the initialized flag. A true
// result guarantees a subsequent read of API observes the value written
// before the matching MarkInitialized call, not a torn or stale one.
func (s *DeviceState) IsInitialized() bool {
	return atomic.LoadUint32(&s.initialized) == 1
}

// MarkInitialized performs a release store of the initialized flag. Callers
// must write API (and InitResult) before calling this, never after.
func (s *DeviceState) MarkInitialized() {
	atomic.StoreUint32(&s.initialized, 1)
}

// DMAChannel is a single entry in the DMA manager's channel pool
// (spec.md §3/§4.9).
type DMAChannel struct {
	Channel   int
	Direction DMADirection
	Priority  int
	InUse     bool
	Owner     string
}

// DMADirection enumerates the transfer direction a DMA channel is reserved
// for.
type DMADirection int

const (
	DMAMemToPeriph DMADirection = iota
	DMAPeriphToMem
	DMAMemToMem
)

// ISREntry is a single entry in the interrupt manager's vector table
// (spec.md §3/§4.9).
type ISREntry struct {
	IRQ      int
	Handler  func(irq int, userData any)
	UserData any
	Priority int
	Enabled  bool
}

// MemoryHeader is the doubly-linked-list node prepended to every tracked
// allocation (spec.md §3/§4.7). Alignment is 0 for unaligned allocations.
// Original holds the pointer actually returned by the host allocator, which
// for aligned allocations differs from the pointer handed back to the
// caller.
type MemoryHeader struct {
	Size      int
	Alignment int
	Original  unsafe.Pointer
	Next      *MemoryHeader
	Prev      *MemoryHeader
}

// HeaderSize is the size in bytes of a MemoryHeader on the current
// platform; callers needing to reserve space ahead of a user buffer use
// this instead of hard-coding a constant, since it depends on pointer
// width.
var HeaderSize = int(unsafe.Sizeof(MemoryHeader{}))
