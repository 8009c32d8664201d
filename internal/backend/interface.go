// Package backend defines the platform-adapter contract the OSAL core uses
// to obtain threads of control and a monotonic clock. This is the seam
// spec.md §5 describes as "the backend provides true preemptive
// multithreading — whether OS threads or RTOS tasks"; the core never
// schedules anything itself.
//
// Exactly one backend ships fully implemented: Hosted, a goroutine-backed
// implementation used for both the production library and its own test
// suite (spec.md §1's "hosted multi-threaded backend (for testing)"). A
// second, BareMetal, is present only as an adapter contract stub — wiring
// it to a real RTOS or register-level platform is explicitly out of scope
// (spec.md §1).
package backend

import (
	"fmt"
	"time"
)

// ErrNotSupported is returned by adapter-contract-only backends.
var ErrNotSupported = fmt.Errorf("backend: operation not supported on this platform")

// ThreadConfig describes the thread of control a task needs.
type ThreadConfig struct {
	Name     string
	Priority int   // 0-31, highest wins; advisory on backends without priority scheduling
	Affinity []int // CPU indices this thread may run on; nil means no pinning
	Entry    func()
}

// Thread is a running (or exited) native thread of control.
type Thread interface {
	// Join blocks until the thread's Entry function returns.
	Join()
	// NativeID returns a backend-specific identifier (OS thread id on
	// Hosted), purely for diagnostics.
	NativeID() uint64
}

// Backend is the platform adapter contract.
type Backend interface {
	// Name identifies the backend for diagnostics and logging.
	Name() string

	// SpawnThread starts cfg.Entry on a new thread of control and returns a
	// handle to it. Entry must run until the task asks to stop; Backend
	// implementations do not supervise or restart it.
	SpawnThread(cfg ThreadConfig) (Thread, error)

	// Now returns the current time from a monotonic clock source. Bounded
	// waits compute their deadline once, at call entry, against this clock
	// (spec.md §9's Open Question mandates monotonicity, leaving the exact
	// clock to the implementer).
	Now() time.Time
}

// Default returns the process-wide backend used when none is configured
// explicitly. It is Hosted unless overridden by SetDefault, matching the
// teacher's lazy-default-with-override pattern (internal/logging.Default).
func Default() Backend {
	return defaultBackend()
}
