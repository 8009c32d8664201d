// Package memtrack implements the allocation-accounting wrapper described
// in spec.md §4.7: every allocation is headed by a MemoryHeader recording
// its size and alignment, threaded into a global doubly-linked list, with
// running total/peak watermark statistics kept under a dedicated lock.
package memtrack

import (
	"sync"
	"unsafe"

	"github.com/osalkit/osal/internal/abi"
)

// SimulatedHeapSize is the fixed total-heap figure reported by Stats on a
// hosted backend, standing in for the linker-provided heap size a real
// embedded target would report (spec.md §4.7 "a simulated fixed value on
// hosted backends").
const SimulatedHeapSize = 64 * 1024 * 1024

// Stats is a point-in-time snapshot of allocator bookkeeping.
type Stats struct {
	TotalHeap      int
	TotalAllocated int
	PeakAllocated  int
	CurrentFree    int
	MinEverFree    int
}

// block is the live payload behind a tracked allocation: the header plus
// the user-visible bytes that follow it in the same backing array, mirroring
// a C allocator's "header prepended to payload" layout without relying on
// unsafe pointer arithmetic into a raw byte arena.
type block struct {
	header  abi.MemoryHeader
	payload []byte
	prev    *block
	next    *block
}

// Tracker owns the global allocation list and running statistics.
type Tracker struct {
	mu             sync.Mutex
	head           *block
	totalAllocated int
	peakAllocated  int
}

// NewTracker constructs an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Alloc allocates size bytes of tracked, unaligned memory and returns the
// user-visible payload slice.
func (t *Tracker) Alloc(size int) ([]byte, abi.Status) {
	if size <= 0 {
		return nil, abi.InvalidParam
	}
	return t.alloc(size, 0, nil)
}

// Calloc allocates count*size bytes of tracked memory, zero-initialized
// (Go's make already zero-initializes, matching calloc's contract).
func (t *Tracker) Calloc(count, size int) ([]byte, abi.Status) {
	if count <= 0 || size <= 0 {
		return nil, abi.InvalidParam
	}
	return t.alloc(count*size, 0, nil)
}

// AllocAligned allocates size bytes with the returned slice's address a
// multiple of alignment, which must be a power of two and at least
// pointer-sized (spec.md §4.7).
func (t *Tracker) AllocAligned(alignment, size int) ([]byte, abi.Status) {
	if size <= 0 {
		return nil, abi.InvalidParam
	}
	if alignment < int(unsafe.Sizeof(uintptr(0))) || alignment&(alignment-1) != 0 {
		return nil, abi.InvalidParam
	}
	return t.alloc(size, alignment, nil)
}

// Realloc resizes the allocation behind p to newSize, preserving existing
// content up to the smaller of the two sizes. Realloc(nil, n) behaves as
// Alloc(n); Realloc(p, 0) frees p and returns nil (spec.md §4.7).
func (t *Tracker) Realloc(p []byte, newSize int) ([]byte, abi.Status) {
	if p == nil {
		return t.Alloc(newSize)
	}
	if newSize == 0 {
		t.Free(p)
		return nil, abi.OK
	}

	t.mu.Lock()
	b := t.findLocked(p)
	if b == nil {
		t.mu.Unlock()
		return nil, abi.InvalidParam
	}
	oldSize := b.header.Size
	t.mu.Unlock()

	newBuf, status := t.Alloc(newSize)
	if !status.OK() {
		return nil, status
	}
	n := oldSize
	if newSize < n {
		n = newSize
	}
	copy(newBuf, p[:n])
	t.Free(p)
	return newBuf, abi.OK
}

// Free releases the allocation behind p. Free(nil) is a no-op.
func (t *Tracker) Free(p []byte) abi.Status {
	if p == nil {
		return abi.OK
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	b := t.findLocked(p)
	if b == nil {
		return abi.InvalidParam
	}

	if b.prev != nil {
		b.prev.next = b.next
	} else {
		t.head = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	}

	t.totalAllocated -= b.header.Size
	return abi.OK
}

// Stats reports current allocator statistics.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		TotalHeap:      SimulatedHeapSize,
		TotalAllocated: t.totalAllocated,
		PeakAllocated:  t.peakAllocated,
		CurrentFree:    SimulatedHeapSize - t.totalAllocated,
		MinEverFree:    SimulatedHeapSize - t.peakAllocated,
	}
}

// ResetPeak resets the peak watermark to the current total, per spec.md
// §3's "monotone non-decreasing between explicit resets" invariant.
func (t *Tracker) ResetPeak() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peakAllocated = t.totalAllocated
}

func (t *Tracker) alloc(size, alignment int, original unsafe.Pointer) ([]byte, abi.Status) {
	extra := 0
	if alignment > 0 {
		extra = alignment
	}
	payload := make([]byte, size+extra)

	data := payload
	if alignment > 0 {
		addr := uintptr(unsafe.Pointer(&payload[0]))
		offset := (alignment - int(addr%uintptr(alignment))) % alignment
		data = payload[offset : offset+size]
	} else {
		data = payload[:size]
	}

	b := &block{header: abi.MemoryHeader{Size: size, Alignment: alignment}, payload: payload}

	t.mu.Lock()
	b.next = t.head
	if t.head != nil {
		t.head.prev = b
	}
	t.head = b

	t.totalAllocated += size
	if t.totalAllocated > t.peakAllocated {
		t.peakAllocated = t.totalAllocated
	}
	t.mu.Unlock()

	return data, abi.OK
}

// findLocked resolves a previously returned payload slice back to its
// owning block by scanning the list, comparing the slice's backing array
// pointer against each block's full payload allocation. Must be called
// with t.mu held.
func (t *Tracker) findLocked(p []byte) *block {
	if len(p) == 0 {
		return nil
	}
	target := unsafe.Pointer(&p[0])
	for b := t.head; b != nil; b = b.next {
		if len(b.payload) == 0 {
			continue
		}
		base := uintptr(unsafe.Pointer(&b.payload[0]))
		end := base + uintptr(len(b.payload))
		ptr := uintptr(target)
		if ptr >= base && ptr < end {
			return b
		}
	}
	return nil
}
