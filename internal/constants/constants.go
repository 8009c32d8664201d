// Package constants holds the compile-time defaults shared by every OSAL
// component: pool capacities, timeout sentinels, and byte-size limits.
package constants

import "time"

// Pool capacities. Each primitive type gets a fixed-size slot array;
// exhaustion returns NoMemory rather than growing.
const (
	MaxTasks       = 16
	MaxMutexes     = 16
	MaxSemaphores  = 16
	MaxQueues      = 8
	MaxTimers      = 16
	MaxEventGroups = 16

	MaxDMAChannels   = 8
	MaxInterruptVecs = 64
)

// Name length and event-bit limits.
const (
	MaxTaskNameLen = 32
	EventBitsWidth = 24
	EventBitsMask  = (1 << EventBitsWidth) - 1
)

// Timeout sentinels shared by every blocking primitive operation.
const (
	// TimeoutPoll performs a single non-blocking attempt.
	TimeoutPoll uint32 = 0

	// TimeoutForever blocks with no deadline.
	TimeoutForever uint32 = 0xFFFFFFFF
)

// Default priority range for tasks (inclusive).
const (
	MinTaskPriority = 0
	MaxTaskPriority = 31
)

// PollGranularity bounds the sleep slice used when a native primitive on the
// active backend lacks a timed-wait variant and the bounded-wait path must
// degrade to polling (spec.md §4.2).
const PollGranularity = 1 * time.Millisecond

// DefaultTimerPeriod is a default period available to callers that create
// timers. The timer engine does not apply it: a timer created with a zero
// period is rejected.
const DefaultTimerPeriod = 100 * time.Millisecond
