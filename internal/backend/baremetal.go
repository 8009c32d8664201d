package backend

import "time"

// bareMetalBackend documents the adapter contract a register-level RTOS or
// bare-metal platform must satisfy to host this OSAL core. Per spec.md §1,
// the specific register-level implementations (STM32, FreeRTOS, ...) are
// out of scope; only the contract they must fulfill lives here, returning
// ErrNotSupported for every operation.
type bareMetalBackend struct{}

// NewBareMetal returns the adapter-contract stub for bare-metal/RTOS
// platforms. A real port replaces this constructor with one that creates
// RTOS tasks and reads a hardware tick counter; it does not need to change
// anything in the primitive, timer, or device packages, which depend only
// on the Backend interface.
func NewBareMetal() Backend { return bareMetalBackend{} }

func (bareMetalBackend) Name() string { return "baremetal-stub" }

func (bareMetalBackend) Now() time.Time { return time.Time{} }

func (bareMetalBackend) SpawnThread(ThreadConfig) (Thread, error) {
	return nil, ErrNotSupported
}
