// Package primitive implements the fixed-capacity kernel objects of the OSAL
// core: tasks, recursive mutexes, counting semaphores, bounded queues, and
// event-flag groups (spec.md §4.1-§4.5). Every object type is backed by a
// Pool, a fixed-capacity slot array addressed by generation-tagged handles
// rather than pointers, so a handle that outlives its slot's lifetime is
// rejected instead of aliasing whatever was allocated into that slot next.
//
// The slot array itself is grounded on the teacher's bucketed, pre-sized
// sync.Pool buffers (internal/queue/pool.go in the reference backend):
// capacity is fixed at construction and never grown, so allocation never
// escapes to the runtime allocator on the hot path.
package primitive

import (
	"sync"

	"github.com/osalkit/osal/internal/abi"
)

type slot[T any] struct {
	inUse      bool
	generation uint32
	value      T
}

// Pool is a fixed-capacity, generation-counted allocator for kernel objects
// of type T. All allocation bookkeeping is guarded by a single mutex that is
// held only across Alloc/Free/Get — never across a blocking wait performed
// on a T after it is returned, per spec.md §4's requirement that the
// process-wide allocation lock never serialize unrelated blocked callers.
type Pool[T any] struct {
	mu    sync.Mutex
	slots []slot[T]
}

// NewPool constructs a pool with the given fixed capacity. capacity mirrors
// a spec.md MaxX constant (MaxTasks, MaxMutexes, ...) and is never exceeded.
// Every slot's generation starts at 1, not 0, so the handle for slot index 0
// is never the zero value abi.InvalidHandle reserves for "never issued".
func NewPool[T any](capacity int) *Pool[T] {
	p := &Pool[T]{slots: make([]slot[T], capacity)}
	for i := range p.slots {
		p.slots[i].generation = 1
	}
	return p
}

// Cap returns the pool's fixed capacity.
func (p *Pool[T]) Cap() int {
	return len(p.slots)
}

// Alloc finds the first free slot, marks it in-use, seeds it with init, and
// returns a handle encoding the slot's index and current generation. It
// returns abi.NoMemory if every slot is occupied, matching spec.md §4.1's
// status for primitive-pool exhaustion (abi.NoResource is reserved for the
// DMA/interrupt resource managers in spec.md §4.9).
func (p *Pool[T]) Alloc(init T) (abi.Handle, *T, abi.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.slots {
		if !p.slots[i].inUse {
			p.slots[i].inUse = true
			p.slots[i].value = init
			h := abi.NewHandle(uint32(i), p.slots[i].generation)
			return h, &p.slots[i].value, abi.OK
		}
	}
	return abi.InvalidHandle, nil, abi.NoMemory
}

// Free releases the slot owned by h and bumps its generation so any handle
// still referencing the old generation is rejected by subsequent Get calls.
// Freeing an already-free or stale handle is reported as abi.InvalidParam.
func (p *Pool[T]) Free(h abi.Handle) abi.Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := int(h.Index())
	if idx < 0 || idx >= len(p.slots) {
		return abi.InvalidParam
	}
	s := &p.slots[idx]
	if !s.inUse || s.generation != h.Generation() {
		return abi.InvalidParam
	}
	var zero T
	s.inUse = false
	s.generation++
	s.value = zero
	return abi.OK
}

// Get resolves h to its live value pointer. The returned pointer is stable
// for the slot's lifetime (the backing array is never reallocated), so
// callers may retain it across blocking waits as long as they re-validate
// the handle's generation before trusting state derived from it long after
// the call, since a concurrent Free+Alloc can reuse the slot in between.
func (p *Pool[T]) Get(h abi.Handle) (*T, abi.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := int(h.Index())
	if idx < 0 || idx >= len(p.slots) {
		return nil, abi.InvalidParam
	}
	s := &p.slots[idx]
	if !s.inUse || s.generation != h.Generation() {
		return nil, abi.InvalidParam
	}
	return &s.value, abi.OK
}

// Valid reports whether h currently refers to a live, in-use slot.
func (p *Pool[T]) Valid(h abi.Handle) bool {
	_, status := p.Get(h)
	return status.OK()
}

// Len reports the number of slots currently in use.
func (p *Pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for i := range p.slots {
		if p.slots[i].inUse {
			n++
		}
	}
	return n
}
