package primitive

import (
	"sync"
	"time"

	"github.com/osalkit/osal/internal/abi"
	"github.com/osalkit/osal/internal/backend"
	"github.com/osalkit/osal/internal/constants"
)

// mutexState is a recursive mutex: the owning thread may relock any number
// of times and must unlock the same number of times before another thread
// can acquire it (spec.md §4.2).
type mutexState struct {
	mu        sync.Mutex
	cond      *sync.Cond
	ownerSet  bool
	owner     uint64
	holdCount int
	deleted   bool
	waiters   int
}

// MutexRegistry owns the fixed-capacity pool of recursive mutexes.
type MutexRegistry struct {
	pool *Pool[mutexState]
}

// NewMutexRegistry constructs a registry sized per constants.MaxMutexes.
func NewMutexRegistry() *MutexRegistry {
	return &MutexRegistry{pool: NewPool[mutexState](constants.MaxMutexes)}
}

// Create allocates a mutex slot in the unlocked state.
func (r *MutexRegistry) Create() (abi.Handle, abi.Status) {
	h, st, status := r.pool.Alloc(mutexState{})
	if !status.OK() {
		return abi.InvalidHandle, status
	}
	st.cond = sync.NewCond(&st.mu)
	return h, abi.OK
}

// Delete releases the mutex slot. Any thread currently parked in Lock wakes
// and observes abi.InvalidParam on its next predicate check rather than
// blocking forever, the "unblock with an error" resolution spec.md §9 offers
// for deletion racing a pending waiter. Delete blocks until every such
// waiter has observed the deletion and left its wait loop, so the slot's
// native lock is never reused (by a future Alloc) while a stale goroutine
// might still touch it.
func (r *MutexRegistry) Delete(h abi.Handle) abi.Status {
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

// Lock acquires the mutex for owner (a thread/task identity supplied by the
// caller), honoring three timeout classes: constants.TimeoutPoll (try-lock),
// constants.TimeoutForever (block indefinitely), and any other value as a
// bounded wait in milliseconds measured from call entry against the
// monotonic clock.
func (r *MutexRegistry) Lock(h abi.Handle, owner uint64, timeoutMs uint32) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}

	deadline := backend.Monotonic().Add(time.Duration(timeoutMs) * time.Millisecond)

	st.mu.Lock()
	defer st.mu.Unlock()

	for st.ownerSet && st.owner != owner {
		if st.deleted {
			return abi.InvalidParam
		}
		switch timeoutMs {
		case constants.TimeoutPoll:
			return abi.Timeout
		case constants.TimeoutForever:
			st.waiters++
			st.cond.Wait()
			st.waiters--
		default:
			if !backend.Monotonic().Before(deadline) {
				return abi.Timeout
			}
			// sync.Cond has no timed wait; degrade to bounded polling, the
			// explicit fallback spec.md §4.2 sanctions for platforms
			// lacking a native timed-lock primitive.
			st.waiters++
			st.mu.Unlock()
			time.Sleep(constants.PollGranularity)
			st.mu.Lock()
			st.waiters--
		}
	}

	if st.deleted {
		return abi.InvalidParam
	}

	st.ownerSet = true
	st.owner = owner
	st.holdCount++
	return abi.OK
}

// Unlock releases one level of recursive ownership. Returns abi.InvalidState
// if the caller does not currently hold the mutex.
func (r *MutexRegistry) Unlock(h abi.Handle, owner uint64) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.ownerSet || st.owner != owner {
		return abi.InvalidState
	}

	st.holdCount--
	if st.holdCount == 0 {
		st.ownerSet = false
		st.owner = 0
		st.cond.Signal()
	}
	return abi.OK
}
