package primitive

import (
	"sync"
	"time"

	"github.com/osalkit/osal/internal/abi"
	"github.com/osalkit/osal/internal/backend"
	"github.com/osalkit/osal/internal/constants"
)

// WaitMode selects the match rule for EventRegistry.Wait.
type WaitMode int

const (
	// WaitAny succeeds as soon as any one of the waited bits is set.
	WaitAny WaitMode = iota
	// WaitAll succeeds only once every waited bit is set.
	WaitAll
)

// eventState holds a 24-bit bitset; only bits 0-23 are significant
// (spec.md §4.5).
type eventState struct {
	mu      sync.Mutex
	cond    *sync.Cond
	bits    uint32
	deleted bool
	waiters int
}

// EventRegistry owns the fixed-capacity pool of event-flag groups.
type EventRegistry struct {
	pool *Pool[eventState]
}

// NewEventRegistry constructs a registry sized per constants.MaxEventGroups.
func NewEventRegistry() *EventRegistry {
	return &EventRegistry{pool: NewPool[eventState](constants.MaxEventGroups)}
}

// Create allocates an event-flag group with all bits clear.
func (r *EventRegistry) Create() (abi.Handle, abi.Status) {
	h, st, status := r.pool.Alloc(eventState{})
	if !status.OK() {
		return abi.InvalidHandle, status
	}
	st.cond = sync.NewCond(&st.mu)
	return h, abi.OK
}

// Delete releases the event group, waking and failing any pending Wait
// callers first.
func (r *EventRegistry) Delete(h abi.Handle) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}
	st.mu.Lock()
	st.deleted = true
	st.cond.Broadcast()
	st.mu.Unlock()

	for {
		st.mu.Lock()
		w := st.waiters
		st.mu.Unlock()
		if w == 0 {
			break
		}
		time.Sleep(constants.PollGranularity)
	}

	return r.pool.Free(h)
}

// Set ORs bits (masked to the low 24 bits) into the group and wakes every
// waiter so each can re-check its own match rule independently
// ("broadcast on set", spec.md §4.5). Clear never wakes waiters.
func (r *EventRegistry) Set(h abi.Handle, bits uint32) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}
	st.mu.Lock()
	st.bits |= bits & constants.EventBitsMask
	st.cond.Broadcast()
	st.mu.Unlock()
	return abi.OK
}

// SetFromISR is the ISR-context counterpart of Set; the hosted backend
// delegates directly since it has no distinct ISR context.
func (r *EventRegistry) SetFromISR(h abi.Handle, bits uint32) abi.Status {
	return r.Set(h, bits)
}

// Clear ANDs out bits (masked to the low 24 bits) from the group. It does
// not wake waiters.
func (r *EventRegistry) Clear(h abi.Handle, bits uint32) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}
	st.mu.Lock()
	st.bits &^= bits & constants.EventBitsMask
	st.mu.Unlock()
	return abi.OK
}

// Get returns the current bitset without blocking.
func (r *EventRegistry) Get(h abi.Handle) (uint32, abi.Status) {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return 0, status
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.bits, abi.OK
}

// Wait blocks until bits (masked to the low 24 bits) match mode's rule
// against the current bitset, or timeoutMs's class expires. On success it
// returns the matched bits (the intersection of bits and the current
// bitset); if autoClear, those matched bits are cleared before returning.
func (r *EventRegistry) Wait(h abi.Handle, bits uint32, mode WaitMode, autoClear bool, timeoutMs uint32) (uint32, abi.Status) {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return 0, status
	}
	bits &= constants.EventBitsMask

	deadline := backend.Monotonic().Add(time.Duration(timeoutMs) * time.Millisecond)

	st.mu.Lock()
	defer st.mu.Unlock()

	for {
		matched := st.bits & bits
		satisfied := false
		switch mode {
		case WaitAny:
			satisfied = matched != 0
		case WaitAll:
			satisfied = matched == bits
		}
		if satisfied {
			if autoClear {
				st.bits &^= matched
			}
			return matched, abi.OK
		}
		if st.deleted {
			return 0, abi.InvalidParam
		}
		switch timeoutMs {
		case constants.TimeoutPoll:
			return 0, abi.Timeout
		case constants.TimeoutForever:
			st.waiters++
			st.cond.Wait()
			st.waiters--
		default:
			if !backend.Monotonic().Before(deadline) {
				return 0, abi.Timeout
			}
			st.waiters++
			st.mu.Unlock()
			time.Sleep(constants.PollGranularity)
			st.mu.Lock()
			st.waiters--
		}
	}
}
