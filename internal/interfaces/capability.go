// Package interfaces provides the internal capability-interface
// definitions for the OSAL/HAL core. These are separate from the root
// package's re-exported aliases to avoid an import cycle between internal
// components and the root osal package.
package interfaces

import "github.com/osalkit/osal/internal/abi"

// SyncIO is the synchronous-transfer capability a device may expose
// (spec.md glossary: "Capability interface").
type SyncIO interface {
	Read(p []byte, off int64) (n int, status abi.Status)
	Write(p []byte, off int64) (n int, status abi.Status)
}

// AsyncIO is the asynchronous-transfer capability: a device posts a result
// to the callback once the operation completes, instead of blocking the
// caller.
type AsyncIO interface {
	ReadAsync(p []byte, off int64, done func(n int, status abi.Status))
	WriteAsync(p []byte, off int64, done func(n int, status abi.Status))
}

// Lifecycle is the start/stop capability most registered devices expose.
type Lifecycle interface {
	Start() abi.Status
	Stop() abi.Status
	Close() abi.Status
}

// PowerControl is an optional capability for devices that model a
// power domain (low-power/active transitions). Left unimplemented by the
// demonstrative in-memory device; present so third-party device
// implementations have a contract to compose against.
type PowerControl interface {
	Suspend() abi.Status
	Resume() abi.Status
}

// Logger is the minimal logging capability components accept so they are
// not coupled to internal/logging.Logger directly.
type Logger interface {
	Printf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Observer is the metrics-collection capability; implementations must be
// thread-safe since methods may be called concurrently from task threads,
// timer workers, and ISR dispatch.
type Observer interface {
	ObserveIO(bytes uint64, latencyNs uint64, success bool)
	ObserveTimerFire(latencyNs uint64)
	ObserveQueueDepth(depth uint32)
}

// ErrorCallback is the process-global error-reporting contract from
// spec.md §6: invoked from the context of the failure (which may be an
// ISR or timer worker), and must not block.
type ErrorCallback func(status abi.Status, module string, message string)
