// Package timer implements the per-timer dedicated worker loop described in
// spec.md §4.6: each timer owns a goroutine that waits for either its period
// to elapse or a control signal (start/stop/reset/delete), re-examines its
// guarded state on every wake, and invokes its callback outside the lock.
//
// The loop shape is grounded on the teacher's per-queue ioLoop
// (internal/queue/runner.go in the reference backend): a dedicated
// goroutine spawned once at Create time that runs until told to stop,
// selecting between "real work happened" and "an external signal arrived."
// Where the teacher selects between io_uring completions and ctx.Done, a
// timer selects between a time.Timer firing and a buffered wake channel.
package timer

import (
	"sync"
	"time"

	"github.com/osalkit/osal/internal/abi"
	"github.com/osalkit/osal/internal/backend"
	"github.com/osalkit/osal/internal/constants"
	"github.com/osalkit/osal/internal/primitive"
)

// Mode selects one-shot vs periodic re-arming.
type Mode int

const (
	OneShot Mode = iota
	Periodic
)

type timerSlot struct {
	mu            sync.Mutex
	periodMs      uint32
	mode          Mode
	callback      func(arg any)
	arg           any
	active        bool
	deletePending bool
	resetSeq      uint64
	wakeCh        chan struct{}
	doneCh        chan struct{}
}

// Registry owns the fixed-capacity pool of timers and the backend used to
// spawn each timer's dedicated worker.
type Registry struct {
	pool    *primitive.Pool[timerSlot]
	backend backend.Backend
}

// NewRegistry constructs a timer registry sized per constants.MaxTimers.
func NewRegistry(b backend.Backend) *Registry {
	return &Registry{pool: primitive.NewPool[timerSlot](constants.MaxTimers), backend: b}
}

// Create allocates a timer slot and spawns its worker, in the stopped
// state. periodMs must be non-zero (spec.md §4.6).
func (r *Registry) Create(periodMs uint32, mode Mode, callback func(arg any), arg any) (abi.Handle, abi.Status) {
	if periodMs == 0 {
		return abi.InvalidHandle, abi.InvalidParam
	}
	if callback == nil {
		return abi.InvalidHandle, abi.NullPointer
	}

	h, st, status := r.pool.Alloc(timerSlot{
		periodMs: periodMs,
		mode:     mode,
		callback: callback,
		arg:      arg,
		wakeCh:   make(chan struct{}, 1),
		doneCh:   make(chan struct{}),
	})
	if !status.OK() {
		return abi.InvalidHandle, status
	}

	_, err := r.backend.SpawnThread(backend.ThreadConfig{
		Name:  "timer",
		Entry: func() { r.run(st) },
	})
	if err != nil {
		r.pool.Free(h)
		return abi.InvalidHandle, abi.GenericError
	}

	return h, abi.OK
}

// Start arms the timer, restarting its countdown from the current period.
// Identical to Reset, per spec.md §4.6: "Reset also acts as start if the
// timer was stopped."
func (r *Registry) Start(h abi.Handle) abi.Status {
	return r.Reset(h)
}

// Stop disarms the timer. Its worker keeps running, parked until Start,
// Reset, or Delete.
func (r *Registry) Stop(h abi.Handle) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}
	st.mu.Lock()
	if st.deletePending {
		st.mu.Unlock()
		return abi.InvalidParam
	}
	st.active = false
	st.resetSeq++
	st.mu.Unlock()
	notify(st.wakeCh)
	return abi.OK
}

// Reset restarts the countdown using the current period and marks the timer
// active.
func (r *Registry) Reset(h abi.Handle) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}
	st.mu.Lock()
	if st.deletePending {
		st.mu.Unlock()
		return abi.InvalidParam
	}
	st.active = true
	st.resetSeq++
	st.mu.Unlock()
	notify(st.wakeCh)
	return abi.OK
}

// SetPeriod mutates the timer's period; if the timer is active, it signals
// a reset so the next cycle uses the new period (spec.md §4.6).
func (r *Registry) SetPeriod(h abi.Handle, periodMs uint32) abi.Status {
	if periodMs == 0 {
		return abi.InvalidParam
	}
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}
	st.mu.Lock()
	if st.deletePending {
		st.mu.Unlock()
		return abi.InvalidParam
	}
	st.periodMs = periodMs
	active := st.active
	if active {
		st.resetSeq++
	}
	st.mu.Unlock()
	if active {
		notify(st.wakeCh)
	}
	return abi.OK
}

// IsActive reports whether the timer is currently armed.
func (r *Registry) IsActive(h abi.Handle) (bool, abi.Status) {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return false, status
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.active, abi.OK
}

// Delete marks the timer for deletion, wakes its worker, waits for it to
// exit, and frees the slot.
func (r *Registry) Delete(h abi.Handle) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}

	st.mu.Lock()
	alreadyPending := st.deletePending
	st.deletePending = true
	st.mu.Unlock()

	if !alreadyPending {
		notify(st.wakeCh)
	}
	<-st.doneCh

	return r.pool.Free(h)
}

// run is the timer's dedicated worker loop.
func (r *Registry) run(st *timerSlot) {
	defer close(st.doneCh)

	for {
		st.mu.Lock()
		if st.deletePending {
			st.mu.Unlock()
			return
		}
		if !st.active {
			st.mu.Unlock()
			<-st.wakeCh
			continue
		}
		period := time.Duration(st.periodMs) * time.Millisecond
		mySeq := st.resetSeq
		st.mu.Unlock()

		t := time.NewTimer(period)
		select {
		case <-st.wakeCh:
			t.Stop()
			continue
		case <-t.C:
			st.mu.Lock()
			if st.deletePending {
				st.mu.Unlock()
				return
			}
			if st.resetSeq != mySeq {
				// A reset/stop/set-period raced the expiry; the countdown
				// this timer.C belongs to is stale, re-evaluate state fresh.
				st.mu.Unlock()
				continue
			}
			cb, arg := st.callback, st.arg
			if st.mode == OneShot {
				st.active = false
			}
			st.mu.Unlock()

			// Invoked outside the lock so the callback may safely call back
			// into this timer (e.g. Stop, SetPeriod) without deadlocking.
			cb(arg)
		}
	}
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
