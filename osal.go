// Package osal implements an embedded OS Abstraction Layer: tasks,
// recursive mutexes, counting semaphores, bounded queues, software timers,
// 24-bit event flag groups, a heap tracker, and a HAL device-model core
// (compile-time device registry with lazy init, DMA channel arbitration,
// and interrupt-vector dispatch). One process-wide System bundles all of
// it behind a single handle-based API, mirroring how the upstream block
// device library bundles its queue runners and control plane behind one
// Device value.
package osal

import (
	"github.com/osalkit/osal/internal/abi"
	"github.com/osalkit/osal/internal/backend"
	"github.com/osalkit/osal/internal/device"
	"github.com/osalkit/osal/internal/logging"
	"github.com/osalkit/osal/internal/memtrack"
	"github.com/osalkit/osal/internal/primitive"
	"github.com/osalkit/osal/internal/resource"
	"github.com/osalkit/osal/internal/timer"
)

// Handle and Status are re-exported so callers never need to import
// internal/abi directly.
type (
	Handle = abi.Handle
	Status = abi.Status
)

// Re-exported status constants, so callers compare against osal.OK,
// osal.Timeout, etc. instead of reaching into internal/abi.
const (
	OK            = abi.OK
	GenericError  = abi.GenericError
	InvalidParam  = abi.InvalidParam
	NullPointer   = abi.NullPointer
	NotSupported  = abi.NotSupported
	NotInit       = abi.NotInit
	AlreadyInit   = abi.AlreadyInit
	InvalidState  = abi.InvalidState
	Busy          = abi.Busy
	NoMemory      = abi.NoMemory
	NoResource    = abi.NoResource
	Timeout       = abi.Timeout
	Full          = abi.Full
	Empty         = abi.Empty
	IO            = abi.IO
	Overrun       = abi.Overrun
	Nack          = abi.Nack
	DMA           = abi.DMA
	InvalidHandle = abi.InvalidHandle
)

// System is the OSAL instance: one fixed-capacity pool per primitive type,
// the device registry, and the DMA/interrupt resource managers, all bound
// to a single backend.Backend for threads and the clock. Most programs
// need exactly one System, obtained via Default(); tests construct their
// own with New() to get an isolated set of pools.
type System struct {
	backend backend.Backend

	Tasks       *primitive.TaskRegistry
	Mutexes     *primitive.MutexRegistry
	Semaphores  *primitive.SemaphoreRegistry
	Queues      *primitive.QueueRegistry
	Events      *primitive.EventRegistry
	Timers      *timer.Registry
	Memory      *memtrack.Tracker
	Devices     *device.Registry
	DMA         *resource.DMAManager
	Interrupts  *resource.InterruptManager
	Diagnostics *Diagnostics
}

// New constructs a System bound to the given backend. A nil backend uses
// backend.Default() (the hosted, goroutine-based adapter).
func New(b backend.Backend) *System {
	if b == nil {
		b = backend.Default()
	}
	return &System{
		backend:     b,
		Tasks:       primitive.NewTaskRegistry(b),
		Mutexes:     primitive.NewMutexRegistry(),
		Semaphores:  primitive.NewSemaphoreRegistry(),
		Queues:      primitive.NewQueueRegistry(),
		Events:      primitive.NewEventRegistry(),
		Timers:      timer.NewRegistry(b),
		Memory:      memtrack.NewTracker(),
		Devices:     device.NewRegistry(),
		DMA:         resource.NewDMAManager(),
		Interrupts:  resource.NewInterruptManager(),
		Diagnostics: NewDiagnostics(),
	}
}

var defaultSystem = New(nil)

// Default returns the process-wide System used by the package-level
// convenience functions (RegisterDevice, FindDevice, GetDevice, and friends).
func Default() *System { return defaultSystem }

// TaskEntry is the function signature a task runs; arg is the value passed
// to CreateTask and handed back verbatim.
type TaskEntry = func(arg any)

// WaitMode and TimerMode are re-exported so callers do not need to import
// internal/primitive or internal/timer directly.
type (
	WaitMode  = primitive.WaitMode
	TimerMode = timer.Mode
)

const (
	WaitAny  = primitive.WaitAny
	WaitAll  = primitive.WaitAll
	OneShot  = timer.OneShot
	Periodic = timer.Periodic
)

// CreateTask spawns a new task on s's backend. A name longer than
// MaxTaskNameLen is rejected with InvalidParam; priority must be within
// [MinTaskPriority, MaxTaskPriority]. affinity, if non-nil, pins the task's
// underlying thread to the given CPU indices where the backend supports it.
func (s *System) CreateTask(name string, priority int, affinity []int, entry TaskEntry, arg any) (Handle, Status) {
	h, status := s.Tasks.Create(name, priority, affinity, entry, arg)
	s.Diagnostics.recordCreate(resourceTask, status)
	return h, status
}

// DeleteTask tears down a task. Deleting the calling task marks it
// delete-pending and returns immediately; the task observes this via
// IsTaskDeletePending and must exit its entry function on its own.
func (s *System) DeleteTask(h Handle) Status {
	status := s.Tasks.Delete(h)
	s.Diagnostics.recordDelete(resourceTask, status)
	return status
}

// SuspendTask and ResumeTask implement cooperative suspension: a suspended
// task's next resume-point blocks until Resume is called.
func (s *System) SuspendTask(h Handle) Status { return s.Tasks.Suspend(h) }
func (s *System) ResumeTask(h Handle) Status  { return s.Tasks.Resume(h) }

// IsTaskDeletePending reports whether h has been asked to self-terminate.
func (s *System) IsTaskDeletePending(h Handle) bool { return s.Tasks.IsDeletePending(h) }

// CurrentTask returns the handle of the task running on the calling
// goroutine's OS thread, or InvalidHandle if called from a thread that was
// not spawned via CreateTask.
func (s *System) CurrentTask() Handle { return s.Tasks.CurrentHandle() }

// CreateMutex allocates a recursive mutex (spec.md §4.2).
func (s *System) CreateMutex() (Handle, Status) {
	h, status := s.Mutexes.Create()
	s.Diagnostics.recordCreate(resourceMutex, status)
	return h, status
}

// DeleteMutex releases a mutex's slot, waking any blocked waiters with
// InvalidParam.
func (s *System) DeleteMutex(h Handle) Status {
	status := s.Mutexes.Delete(h)
	s.Diagnostics.recordDelete(resourceMutex, status)
	return status
}

// LockMutex acquires h on behalf of owner (typically the calling task's
// handle value), recursively if owner already holds it. timeoutMs is one
// of TimeoutPoll, TimeoutForever, or a bounded millisecond count.
func (s *System) LockMutex(h Handle, owner uint64, timeoutMs uint32) Status {
	return s.Mutexes.Lock(h, owner, timeoutMs)
}

// UnlockMutex releases one level of recursive ownership; the mutex is only
// freed for other owners once holdCount reaches zero.
func (s *System) UnlockMutex(h Handle, owner uint64) Status {
	return s.Mutexes.Unlock(h, owner)
}

// CreateCountingSemaphore and CreateBinarySemaphore allocate a semaphore
// with the given capacity (spec.md §4.3).
func (s *System) CreateCountingSemaphore(max, initial int) (Handle, Status) {
	h, status := s.Semaphores.CreateCounting(max, initial)
	s.Diagnostics.recordCreate(resourceSemaphore, status)
	return h, status
}

func (s *System) CreateBinarySemaphore(initial int) (Handle, Status) {
	h, status := s.Semaphores.CreateBinary(initial)
	s.Diagnostics.recordCreate(resourceSemaphore, status)
	return h, status
}

// DeleteSemaphore releases a semaphore's slot.
func (s *System) DeleteSemaphore(h Handle) Status {
	status := s.Semaphores.Delete(h)
	s.Diagnostics.recordDelete(resourceSemaphore, status)
	return status
}

// TakeSemaphore and GiveSemaphore implement wait/signal; GiveFromISR is the
// non-blocking variant safe to call from interrupt-manager dispatch.
func (s *System) TakeSemaphore(h Handle, timeoutMs uint32) Status { return s.Semaphores.Take(h, timeoutMs) }
func (s *System) GiveSemaphore(h Handle) Status                   { return s.Semaphores.Give(h) }
func (s *System) GiveSemaphoreFromISR(h Handle) Status            { return s.Semaphores.GiveFromISR(h) }
func (s *System) SemaphoreCount(h Handle) (int, Status)           { return s.Semaphores.Count(h) }

// CreateQueue allocates a bounded ring-buffer queue of itemCount slots,
// each itemSize bytes (spec.md §4.4).
func (s *System) CreateQueue(itemSize, itemCount int) (Handle, Status) {
	h, status := s.Queues.Create(itemSize, itemCount)
	s.Diagnostics.recordCreate(resourceQueue, status)
	return h, status
}

// DeleteQueue releases a queue's slot, waking blocked senders/receivers
// with InvalidState.
func (s *System) DeleteQueue(h Handle) Status {
	status := s.Queues.Delete(h)
	s.Diagnostics.recordDelete(resourceQueue, status)
	return status
}

func (s *System) SendQueue(h Handle, item []byte, timeoutMs uint32) Status {
	return s.Queues.Send(h, item, timeoutMs)
}
func (s *System) SendQueueFront(h Handle, item []byte, timeoutMs uint32) Status {
	return s.Queues.SendFront(h, item, timeoutMs)
}
func (s *System) ReceiveQueue(h Handle, dst []byte, timeoutMs uint32) Status {
	return s.Queues.Receive(h, dst, timeoutMs)
}
func (s *System) PeekQueue(h Handle, dst []byte) Status { return s.Queues.Peek(h, dst) }
func (s *System) SendQueueFromISR(h Handle, item []byte) Status {
	return s.Queues.SendFromISR(h, item)
}
func (s *System) ReceiveQueueFromISR(h Handle, dst []byte) Status {
	return s.Queues.ReceiveFromISR(h, dst)
}
func (s *System) QueueCount(h Handle) (int, Status)   { return s.Queues.Count(h) }
func (s *System) QueueIsEmpty(h Handle) (bool, Status) { return s.Queues.IsEmpty(h) }
func (s *System) QueueIsFull(h Handle) (bool, Status)  { return s.Queues.IsFull(h) }

// CreateEventGroup allocates a 24-bit event flag group (spec.md §4.5).
func (s *System) CreateEventGroup() (Handle, Status) {
	h, status := s.Events.Create()
	s.Diagnostics.recordCreate(resourceEvent, status)
	return h, status
}

// DeleteEventGroup releases an event group's slot.
func (s *System) DeleteEventGroup(h Handle) Status {
	status := s.Events.Delete(h)
	s.Diagnostics.recordDelete(resourceEvent, status)
	return status
}

func (s *System) SetEventBits(h Handle, bits uint32) Status { return s.Events.Set(h, bits) }
func (s *System) SetEventBitsFromISR(h Handle, bits uint32) Status {
	return s.Events.SetFromISR(h, bits)
}
func (s *System) ClearEventBits(h Handle, bits uint32) Status { return s.Events.Clear(h, bits) }
func (s *System) GetEventBits(h Handle) (uint32, Status)      { return s.Events.Get(h) }

// WaitEventBits blocks until bits matches mode's criterion (WaitAny or
// WaitAll), optionally auto-clearing the matched bits before returning.
func (s *System) WaitEventBits(h Handle, bits uint32, mode primitive.WaitMode, autoClear bool, timeoutMs uint32) (uint32, Status) {
	return s.Events.Wait(h, bits, mode, autoClear, timeoutMs)
}

// CreateTimer allocates a software timer (spec.md §4.6). callback runs on
// the timer's dedicated worker goroutine, never on the caller's. Each fire
// is timed and reported to the Diagnostics observer as ObserveTimerFire.
func (s *System) CreateTimer(periodMs uint32, mode timer.Mode, callback func(arg any), arg any) (Handle, Status) {
	instrumented := func(cbArg any) {
		start := s.backend.Now()
		callback(cbArg)
		s.Diagnostics.observerSnapshot().ObserveTimerFire(uint64(s.backend.Now().Sub(start)))
	}
	h, status := s.Timers.Create(periodMs, mode, instrumented, arg)
	s.Diagnostics.recordCreate(resourceTimer, status)
	return h, status
}

func (s *System) DeleteTimer(h Handle) Status {
	status := s.Timers.Delete(h)
	s.Diagnostics.recordDelete(resourceTimer, status)
	return status
}

func (s *System) StartTimer(h Handle) Status                    { return s.Timers.Start(h) }
func (s *System) StopTimer(h Handle) Status                     { return s.Timers.Stop(h) }
func (s *System) ResetTimer(h Handle) Status                    { return s.Timers.Reset(h) }
func (s *System) SetTimerPeriod(h Handle, periodMs uint32) Status { return s.Timers.SetPeriod(h, periodMs) }
func (s *System) IsTimerActive(h Handle) (bool, Status)          { return s.Timers.IsActive(h) }

// AllocMemory, CallocMemory, AllocAlignedMemory, ReallocMemory, and
// FreeMemory implement the tracked heap (spec.md §4.7).
func (s *System) AllocMemory(size int) ([]byte, Status) { return s.Memory.Alloc(size) }
func (s *System) CallocMemory(count, size int) ([]byte, Status) {
	return s.Memory.Calloc(count, size)
}
func (s *System) AllocAlignedMemory(alignment, size int) ([]byte, Status) {
	return s.Memory.AllocAligned(alignment, size)
}
func (s *System) ReallocMemory(p []byte, newSize int) ([]byte, Status) {
	return s.Memory.Realloc(p, newSize)
}
func (s *System) FreeMemory(p []byte) Status   { return s.Memory.Free(p) }
func (s *System) MemoryStats() memtrack.Stats { return s.Memory.Stats() }
func (s *System) ResetPeakMemory()            { s.Memory.ResetPeak() }

// package-level convenience wrappers delegate to Default(), matching the
// upstream package's package-level logging.Default() pattern.

func CreateTask(name string, priority int, affinity []int, entry TaskEntry, arg any) (Handle, Status) {
	return Default().CreateTask(name, priority, affinity, entry, arg)
}

func CreateMutex() (Handle, Status) { return Default().CreateMutex() }

func CreateCountingSemaphore(max, initial int) (Handle, Status) {
	return Default().CreateCountingSemaphore(max, initial)
}

func CreateQueue(itemSize, itemCount int) (Handle, Status) {
	return Default().CreateQueue(itemSize, itemCount)
}

func CreateEventGroup() (Handle, Status) { return Default().CreateEventGroup() }

func CreateTimer(periodMs uint32, mode timer.Mode, callback func(arg any), arg any) (Handle, Status) {
	return Default().CreateTimer(periodMs, mode, callback, arg)
}

func init() {
	// Route Error-level log lines into the default System's diagnostics
	// error-callback contract (spec.md §6/§7), without internal/logging
	// importing this package.
	logging.SetErrorHook(func(module, msg string) {
		defaultSystem.Diagnostics.reportError(abi.GenericError, module, msg)
	})
}
