// Package abi defines the wire-level vocabulary shared by every OSAL
// component: the numeric status taxonomy, opaque handle encoding, and the
// fixed-layout descriptor records (device, DMA channel, ISR entry, memory
// header) that make up the data model in spec.md §3.
package abi

import "fmt"

// Status is the uniform return code every public OSAL operation uses.
// Zero is success; non-zero values fall into named ranges (spec.md §7/§10):
// generic (1-19), state (20-39), resource (40-59), timeout (60-79),
// I/O (80-99), DMA (100-119).
type Status int32

const (
	OK Status = 0

	// Generic (1-19)
	GenericError  Status = 1
	InvalidParam  Status = 2
	NullPointer   Status = 3
	NotSupported  Status = 4
	NotInit       Status = 5
	AlreadyInit   Status = 6

	// State (20-39)
	InvalidState Status = 20
	Busy         Status = 21

	// Resource (40-59)
	NoMemory   Status = 40
	NoResource Status = 41

	// Timeout (60-79)
	Timeout Status = 60

	// I/O (80-99)
	Full    Status = 80
	Empty   Status = 81
	IO      Status = 82
	Overrun Status = 83
	Nack    Status = 84

	// DMA (100-119)
	DMA Status = 100
)

var statusNames = map[Status]string{
	OK:           "OK",
	GenericError: "GENERIC_ERROR",
	InvalidParam: "INVALID_PARAM",
	NullPointer:  "NULL_POINTER",
	NotSupported: "NOT_SUPPORTED",
	NotInit:      "NOT_INIT",
	AlreadyInit:  "ALREADY_INIT",
	InvalidState: "INVALID_STATE",
	Busy:         "BUSY",
	NoMemory:     "NO_MEMORY",
	NoResource:   "NO_RESOURCE",
	Timeout:      "TIMEOUT",
	Full:         "FULL",
	Empty:        "EMPTY",
	IO:           "IO",
	Overrun:      "OVERRUN",
	Nack:         "NACK",
	DMA:          "DMA",
}

// String implements fmt.Stringer, and backs status_to_string from spec.md §6.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS(%d)", int32(s))
}

// OK reports whether the status represents success.
func (s Status) OK() bool { return s == OK }

// Group names the range a status falls in; used by diagnostics to bucket
// error counts without re-deriving range boundaries at every call site.
func (s Status) Group() string {
	switch {
	case s == OK:
		return "ok"
	case s >= 1 && s < 20:
		return "generic"
	case s >= 20 && s < 40:
		return "state"
	case s >= 40 && s < 60:
		return "resource"
	case s >= 60 && s < 80:
		return "timeout"
	case s >= 80 && s < 100:
		return "io"
	case s >= 100 && s < 120:
		return "dma"
	default:
		return "unknown"
	}
}
