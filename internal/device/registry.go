// Package device implements the compile-time device table described in
// spec.md §4.8: a linear list of descriptors searched by name, with lazy,
// at-most-once initialization cached behind an acquire/release fence so a
// reader observing "initialized" never sees a stale API pointer.
//
// The teacher's equivalent construct is its device controller's table of
// devices (internal/ctrl/control.go), indexed by numeric device ID rather
// than name and populated by explicit AddDevice calls; this registry keeps
// the same "table of descriptors behind a lock-free read path" shape but
// substitutes name-keyed, link-time registration for runtime AddDevice,
// matching spec.md §9's guidance to replace the linker-section table with a
// compile-time constructor registry on hosts without section support.
package device

import (
	"sync"

	"github.com/osalkit/osal/internal/abi"
)

// Registry is the process-wide device table. The zero value is not usable;
// construct with NewRegistry.
type Registry struct {
	initMu      sync.Mutex // serializes concurrent first-init races per descriptor
	descriptors []*abi.DeviceDescriptor
}

// NewRegistry constructs an empty device table.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a descriptor to the table. Intended to run from package
// init() functions, mirroring the teacher's device/config registration
// pattern, before any Find/Get call is made. Re-registering the same name
// is permitted; Find/Get see whichever descriptor was registered first for
// that name, matching the link-time table's "first match wins" linear scan.
func (r *Registry) Register(d *abi.DeviceDescriptor) {
	r.descriptors = append(r.descriptors, d)
}

// Find scans the table for a descriptor with the given name. It never
// triggers initialization.
func (r *Registry) Find(name string) (*abi.DeviceDescriptor, abi.Status) {
	for _, d := range r.descriptors {
		if d.Name == name {
			return d, abi.OK
		}
	}
	return nil, abi.NotSupported
}

// Get resolves name to its API, invoking the descriptor's init function on
// first call and caching a successful result thereafter. Subsequent calls are
// a table scan plus two acquire-ordered loads — no re-invocation of init
// (spec.md §4.8). A failed init (non-OK status or nil API) is reported to the
// caller and not cached, so the next Get invokes Init again.
func (r *Registry) Get(name string) (any, abi.Status) {
	d, status := r.Find(name)
	if !status.OK() {
		return nil, status
	}

	if d.State.IsInitialized() {
		return d.State.API, d.State.InitResult
	}

	// Slow path: serialize concurrent first-callers for this descriptor so
	// Init runs at most once, per spec.md §5's "the first-init must
	// serialize" fallback for the double-init race.
	r.initMu.Lock()
	defer r.initMu.Unlock()

	if d.State.IsInitialized() {
		return d.State.API, d.State.InitResult
	}

	api, status := d.Init(d)
	if status.OK() && api == nil {
		status = abi.GenericError
	}
	d.State.InitResult = status
	if !status.OK() {
		// A failed init is not cached: the state stays uninitialized so
		// Initialized keeps implying a non-nil API and an OK result.
		return nil, status
	}
	d.State.API = api
	d.State.MarkInitialized()

	return d.State.API, d.State.InitResult
}
