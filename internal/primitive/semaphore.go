package primitive

import (
	"sync"
	"time"

	"github.com/osalkit/osal/internal/abi"
	"github.com/osalkit/osal/internal/backend"
	"github.com/osalkit/osal/internal/constants"
)

// semaphoreState is a counting semaphore; max=1 makes it a binary semaphore
// (spec.md §4.3).
type semaphoreState struct {
	mu      sync.Mutex
	cond    *sync.Cond
	count   int
	max     int
	deleted bool
	waiters int
}

// SemaphoreRegistry owns the fixed-capacity pool of semaphores.
type SemaphoreRegistry struct {
	pool *Pool[semaphoreState]
}

// NewSemaphoreRegistry constructs a registry sized per constants.MaxSemaphores.
func NewSemaphoreRegistry() *SemaphoreRegistry {
	return &SemaphoreRegistry{pool: NewPool[semaphoreState](constants.MaxSemaphores)}
}

// Create allocates a counting semaphore with the given initial count and
// maximum count. initial must not exceed max.
func (r *SemaphoreRegistry) Create(initial, max int) (abi.Handle, abi.Status) {
	if max <= 0 || initial < 0 || initial > max {
		return abi.InvalidHandle, abi.InvalidParam
	}
	h, st, status := r.pool.Alloc(semaphoreState{count: initial, max: max})
	if !status.OK() {
		return abi.InvalidHandle, status
	}
	st.cond = sync.NewCond(&st.mu)
	return h, abi.OK
}

// CreateBinary allocates a binary semaphore (max=1) with the given initial
// value (0 or 1).
func (r *SemaphoreRegistry) CreateBinary(initial int) (abi.Handle, abi.Status) {
	return r.Create(initial, 1)
}

// CreateCounting is an alias matching spec.md's explicit create_counting
// entry point; semantically identical to Create.
func (r *SemaphoreRegistry) CreateCounting(max, initial int) (abi.Handle, abi.Status) {
	return r.Create(initial, max)
}

// Delete releases the semaphore slot, waking and failing any pending Take
// callers first so the slot's lock is never reused while still referenced.
func (r *SemaphoreRegistry) Delete(h abi.Handle) abi.Status {
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

// Take decrements the count, blocking while it is zero per timeoutMs's
// class (spec.md §4.3's poll / bounded / forever timeout classes, identical
// to Mutex.Lock's).
func (r *SemaphoreRegistry) Take(h abi.Handle, timeoutMs uint32) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}

	deadline := backend.Monotonic().Add(time.Duration(timeoutMs) * time.Millisecond)

	st.mu.Lock()
	defer st.mu.Unlock()

	for st.count == 0 {
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

	st.count--
	return abi.OK
}

// Give increments the count and wakes one waiter, unless count is already
// at max, in which case the give is silently dropped (spec.md §4.3's
// explicit "excess gives are dropped" contract — not an error).
func (r *SemaphoreRegistry) Give(h abi.Handle) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.count < st.max {
		st.count++
		st.cond.Signal()
	}
	return abi.OK
}

// GiveFromISR is the ISR-context counterpart of Give. The hosted backend has
// no distinct ISR context, so it delegates directly, per spec.md §4.3.
func (r *SemaphoreRegistry) GiveFromISR(h abi.Handle) abi.Status {
	return r.Give(h)
}

// Count reports the current count without blocking.
func (r *SemaphoreRegistry) Count(h abi.Handle) (int, abi.Status) {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return 0, status
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.count, abi.OK
}
