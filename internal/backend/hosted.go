package backend

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// hostedBackend is the fully-implemented platform adapter: tasks become
// goroutines, optionally pinned to an OS thread (and, on Linux, a specific
// CPU set) when affinity is requested, mirroring the teacher's per-queue
// ioLoop goroutine that calls runtime.LockOSThread and unix.SchedSetaffinity
// before entering its processing loop.
type hostedBackend struct{}

// NewHosted returns the hosted (goroutine-backed) platform adapter.
func NewHosted() Backend { return hostedBackend{} }

func (hostedBackend) Name() string { return "hosted" }

func (hostedBackend) Now() time.Time { return Monotonic() }

func (hostedBackend) SpawnThread(cfg ThreadConfig) (Thread, error) {
	if cfg.Entry == nil {
		return nil, ErrNotSupported
	}
	t := &hostedThread{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		// Every task pins to one OS thread for its entire lifetime, not only
		// when affinity is requested: the task registry keys its
		// thread-local "current task" map off unix.Gettid(), and an
		// unpinned goroutine can migrate OS threads between calls, which
		// would silently stale that lookup.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if len(cfg.Affinity) > 0 {
			pinToCPUs(cfg.Affinity)
		}
		t.nativeID.Store(uint64(unix.Gettid()))
		cfg.Entry()
	}()
	return t, nil
}

func pinToCPUs(cpus []int) {
	var mask unix.CPUSet
	for _, cpu := range cpus {
		mask.Set(cpu)
	}
	// Best effort: an unsupported affinity request should not prevent the
	// task from running, only from being pinned.
	_ = unix.SchedSetaffinity(0, &mask)
}

type hostedThread struct {
	done     chan struct{}
	nativeID atomic.Uint64
}

func (t *hostedThread) Join() { <-t.done }

func (t *hostedThread) NativeID() uint64 { return t.nativeID.Load() }

var (
	defaultMu      sync.RWMutex
	currentBackend Backend = NewHosted()
)

func defaultBackend() Backend {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return currentBackend
}

// SetDefault overrides the process-wide default backend. Intended for
// tests that want to inject a backend double; production code normally
// relies on the Hosted default.
func SetDefault(b Backend) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	currentBackend = b
}
