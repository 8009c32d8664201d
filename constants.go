package osal

import "github.com/osalkit/osal/internal/constants"

// Re-exported pool capacities and timing defaults, so callers need not
// import the internal/constants package directly.
const (
	MaxTasks       = constants.MaxTasks
	MaxMutexes     = constants.MaxMutexes
	MaxSemaphores  = constants.MaxSemaphores
	MaxQueues      = constants.MaxQueues
	MaxTimers      = constants.MaxTimers
	MaxEventGroups = constants.MaxEventGroups

	MaxDMAChannels   = constants.MaxDMAChannels
	MaxInterruptVecs = constants.MaxInterruptVecs

	MaxTaskNameLen = constants.MaxTaskNameLen
	EventBitsWidth = constants.EventBitsWidth
	EventBitsMask  = constants.EventBitsMask

	TimeoutPoll    = constants.TimeoutPoll
	TimeoutForever = constants.TimeoutForever

	MinTaskPriority = constants.MinTaskPriority
	MaxTaskPriority = constants.MaxTaskPriority
)

// PollGranularity and DefaultTimerPeriod are re-exported as vars since
// they're time.Duration, not untyped constants.
var (
	PollGranularity    = constants.PollGranularity
	DefaultTimerPeriod = constants.DefaultTimerPeriod
)
