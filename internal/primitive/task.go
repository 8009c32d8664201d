package primitive

import (
	"sync"

	"github.com/osalkit/osal/internal/abi"
	"github.com/osalkit/osal/internal/backend"
	"github.com/osalkit/osal/internal/constants"
)

// taskState is the live state of a task slot (spec.md §3 Task).
type taskState struct {
	mu            sync.Mutex
	name          string
	priority      int
	running       bool
	suspended     bool
	deletePending bool
	entry         func(arg any)
	arg           any
	thread        backend.Thread
	resumeCh      chan struct{}
}

// TaskRegistry owns the fixed-capacity task pool and the thread-local
// current-task pointer (spec.md §3, §6 "exactly one slot").
type TaskRegistry struct {
	pool    *Pool[taskState]
	backend backend.Backend

	currentMu sync.RWMutex
	current   map[uint64]abi.Handle // native thread id -> task handle
}

// NewTaskRegistry constructs a task registry bound to b, with a fixed
// capacity pool sized per constants.MaxTasks.
func NewTaskRegistry(b backend.Backend) *TaskRegistry {
	return &TaskRegistry{
		pool:    NewPool[taskState](constants.MaxTasks),
		backend: b,
		current: make(map[uint64]abi.Handle),
	}
}

// Create allocates a task slot and spawns its thread of control. entry runs
// on the new thread with arg; priority and affinity are advisory hints
// forwarded to the backend.
func (r *TaskRegistry) Create(name string, priority int, affinity []int, entry func(arg any), arg any) (abi.Handle, abi.Status) {
	if entry == nil {
		return abi.InvalidHandle, abi.NullPointer
	}
	if len(name) > constants.MaxTaskNameLen {
		return abi.InvalidHandle, abi.InvalidParam
	}
	if priority < constants.MinTaskPriority || priority > constants.MaxTaskPriority {
		return abi.InvalidHandle, abi.InvalidParam
	}

	h, st, status := r.pool.Alloc(taskState{
		name:     name,
		priority: priority,
		entry:    entry,
		arg:      arg,
		resumeCh: make(chan struct{}, 1),
	})
	if !status.OK() {
		return abi.InvalidHandle, status
	}

	st.mu.Lock()
	st.running = true
	st.mu.Unlock()

	thread, err := r.backend.SpawnThread(backend.ThreadConfig{
		Name:     name,
		Priority: priority,
		Affinity: affinity,
		Entry: func() {
			r.bindCurrent(h)
			defer r.unbindCurrent()
			st.mu.Lock()
			fn, fnArg := st.entry, st.arg
			st.mu.Unlock()
			fn(fnArg)
			st.mu.Lock()
			st.running = false
			st.mu.Unlock()
			// Free this task's own slot after the running=false bookkeeping
			// above, not inside Delete: a self-delete runs on this very
			// thread, and freeing from Delete would bump the slot's
			// generation out from under this cleanup.
			r.pool.Free(h)
		},
	})
	if err != nil {
		r.pool.Free(h)
		return abi.InvalidHandle, abi.GenericError
	}

	st.mu.Lock()
	st.thread = thread
	st.mu.Unlock()

	return h, abi.OK
}

// Delete marks the task delete-pending and wakes it from any suspend it may
// be parked in; unless the caller is the task deleting itself, it joins the
// underlying thread before returning (spec.md §5 Cancellation). The task's
// pool slot is freed by its own entry-wrapper closure once the entry
// function returns, not by Delete: for a self-delete that closure is still
// running on the calling thread, so freeing here would bump the slot's
// generation out from under its own cleanup.
func (r *TaskRegistry) Delete(h abi.Handle) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}

	selfDelete := r.CurrentHandle() == h

	st.mu.Lock()
	st.deletePending = true
	thread := st.thread
	resumeCh := st.resumeCh
	st.mu.Unlock()

	select {
	case resumeCh <- struct{}{}:
	default:
	}

	if !selfDelete && thread != nil {
		thread.Join()
	}

	return abi.OK
}

// Suspend parks the calling goroutine until Resume or Delete targets h.
func (r *TaskRegistry) Suspend(h abi.Handle) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}

	st.mu.Lock()
	if st.deletePending {
		st.mu.Unlock()
		return abi.InvalidState
	}
	st.suspended = true
	ch := st.resumeCh
	st.mu.Unlock()

	<-ch

	st.mu.Lock()
	st.suspended = false
	st.mu.Unlock()
	return abi.OK
}

// Resume wakes a task parked in Suspend. A no-op if the task is not suspended.
func (r *TaskRegistry) Resume(h abi.Handle) abi.Status {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return status
	}
	st.mu.Lock()
	suspended := st.suspended
	ch := st.resumeCh
	st.mu.Unlock()
	if suspended {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return abi.OK
}

// IsDeletePending reports whether h has been marked for deletion, the
// cooperative cancellation check a task's entry loop should poll.
func (r *TaskRegistry) IsDeletePending(h abi.Handle) bool {
	st, status := r.pool.Get(h)
	if !status.OK() {
		return true
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.deletePending
}

func (r *TaskRegistry) bindCurrent(h abi.Handle) {
	tid := nativeThreadID()
	r.currentMu.Lock()
	r.current[tid] = h
	r.currentMu.Unlock()
}

func (r *TaskRegistry) unbindCurrent() {
	tid := nativeThreadID()
	r.currentMu.Lock()
	delete(r.current, tid)
	r.currentMu.Unlock()
}

// CurrentHandle returns the task handle bound to the calling thread, or
// abi.InvalidHandle if the caller is not running inside a task entry
// function (e.g. the goroutine that called Create).
func (r *TaskRegistry) CurrentHandle() abi.Handle {
	tid := nativeThreadID()
	r.currentMu.RLock()
	defer r.currentMu.RUnlock()
	return r.current[tid]
}
