package osal

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/osalkit/osal/internal/abi"
	"github.com/osalkit/osal/internal/interfaces"
)

// resourceKind enumerates the primitive types diagnostics tracks
// active/peak counts for.
type resourceKind int

const (
	resourceTask resourceKind = iota
	resourceMutex
	resourceSemaphore
	resourceQueue
	resourceEvent
	resourceTimer
	numResourceKinds
)

func (k resourceKind) String() string {
	switch k {
	case resourceTask:
		return "task"
	case resourceMutex:
		return "mutex"
	case resourceSemaphore:
		return "semaphore"
	case resourceQueue:
		return "queue"
	case resourceEvent:
		return "event"
	case resourceTimer:
		return "timer"
	default:
		return "unknown"
	}
}

// resourceCounter tracks the live and historical-peak count of one
// resource kind, following the upstream Metrics.MaxQueueDepth
// compare-and-swap idiom.
type resourceCounter struct {
	active atomic.Int64
	peak   atomic.Int64
}

func (c *resourceCounter) inc() {
	n := c.active.Add(1)
	for {
		peak := c.peak.Load()
		if n <= peak {
			return
		}
		if c.peak.CompareAndSwap(peak, n) {
			return
		}
	}
}

func (c *resourceCounter) dec() { c.active.Add(-1) }

// Diagnostics aggregates resource accounting and error reporting for a
// System: active/peak counts per primitive type, per-status-group error
// counts, and the process-wide error-callback fan-out described in
// spec.md §6/§7.
type Diagnostics struct {
	counters [numResourceKinds]resourceCounter

	errMu      sync.RWMutex
	errorCount map[string]uint64 // keyed by abi.Status.Group()

	cbMu       sync.RWMutex
	callbacks  []interfaces.ErrorCallback
	observer   interfaces.Observer
	startedAt  time.Time
}

// NewDiagnostics constructs an empty Diagnostics with a no-op Observer.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		errorCount: make(map[string]uint64),
		observer:   NoOpObserver{},
		startedAt:  time.Now(),
	}
}

func (d *Diagnostics) recordCreate(kind resourceKind, status abi.Status) {
	if status.OK() {
		d.counters[kind].inc()
	} else {
		d.recordStatus(status)
	}
}

func (d *Diagnostics) recordDelete(kind resourceKind, status abi.Status) {
	if status.OK() {
		d.counters[kind].dec()
	}
}

func (d *Diagnostics) recordStatus(status abi.Status) {
	if status.OK() {
		return
	}
	group := status.Group()
	d.errMu.Lock()
	d.errorCount[group]++
	d.errMu.Unlock()
}

// RegisterErrorCallback adds a callback invoked, in its own goroutine, for
// every non-OK status observed via ReportError. Multiple callbacks may be
// registered; none may block the others.
func (d *Diagnostics) RegisterErrorCallback(cb interfaces.ErrorCallback) {
	if cb == nil {
		return
	}
	d.cbMu.Lock()
	d.callbacks = append(d.callbacks, cb)
	d.cbMu.Unlock()
}

// SetObserver installs the metrics-collection sink. Its ObserveTimerFire is
// called after every timer callback created through System.CreateTimer;
// nothing in this module calls ObserveIO or ObserveQueueDepth. A nil
// observer reverts to NoOpObserver.
func (d *Diagnostics) SetObserver(o interfaces.Observer) {
	if o == nil {
		o = NoOpObserver{}
	}
	d.cbMu.Lock()
	d.observer = o
	d.cbMu.Unlock()
}

func (d *Diagnostics) observerSnapshot() interfaces.Observer {
	d.cbMu.RLock()
	defer d.cbMu.RUnlock()
	return d.observer
}

// ReportError is the spec.md §6/§7 report_error(status, module, message)
// entry point: it accounts the status and fans it out to every registered
// callback without blocking the caller.
func (d *Diagnostics) ReportError(status abi.Status, module, message string) {
	d.reportError(status, module, message)
}

func (d *Diagnostics) reportError(status abi.Status, module, message string) {
	d.recordStatus(status)

	d.cbMu.RLock()
	callbacks := append([]interfaces.ErrorCallback(nil), d.callbacks...)
	d.cbMu.RUnlock()

	for _, cb := range callbacks {
		go cb(status, module, message)
	}
}

// Snapshot is a point-in-time view of resource accounting.
type Snapshot struct {
	Active map[string]int64
	Peak   map[string]int64
	Errors map[string]uint64
	Uptime time.Duration
}

// Snapshot returns the current resource and error counts.
func (d *Diagnostics) Snapshot() Snapshot {
	snap := Snapshot{
		Active: make(map[string]int64, numResourceKinds),
		Peak:   make(map[string]int64, numResourceKinds),
		Uptime: time.Since(d.startedAt),
	}
	for k := resourceKind(0); k < numResourceKinds; k++ {
		snap.Active[k.String()] = d.counters[k].active.Load()
		snap.Peak[k.String()] = d.counters[k].peak.Load()
	}

	d.errMu.RLock()
	snap.Errors = make(map[string]uint64, len(d.errorCount))
	for k, v := range d.errorCount {
		snap.Errors[k] = v
	}
	d.errMu.RUnlock()

	return snap
}

// NoOpObserver discards every observation; the default until SetObserver
// installs a real sink.
type NoOpObserver struct{}

func (NoOpObserver) ObserveIO(uint64, uint64, bool)  {}
func (NoOpObserver) ObserveTimerFire(uint64)         {}
func (NoOpObserver) ObserveQueueDepth(uint32)        {}

var _ interfaces.Observer = NoOpObserver{}
