package backend

import "sync/atomic"

// StoreRelease publishes val to *addr with release semantics: every write
// program-ordered before this call is visible to any goroutine that
// subsequently observes val via LoadAcquire. This is the ordering the device
// registry (spec.md §5) relies on to publish a lazily-initialized API pointer
// before flipping its "initialized" flag, so readers never observe
// initialized==true with a stale (nil) API pointer; abi.DeviceState applies
// the same sync/atomic store and load directly rather than calling these
// helpers.
//
// The teacher's equivalent (internal/uring/barrier.go) emits raw x86
// SFENCE/MFENCE via cgo; Go's memory model guarantees the same ordering
// for sync/atomic operations on every architecture Go supports, so the
// portable OSAL core uses atomic stores/loads instead of an
// architecture-specific fence and forgoes cgo entirely.
func StoreRelease(addr *uint32, val uint32) {
	atomic.StoreUint32(addr, val)
}

// LoadAcquire reads *addr with acquire semantics; see StoreRelease.
func LoadAcquire(addr *uint32) uint32 {
	return atomic.LoadUint32(addr)
}
