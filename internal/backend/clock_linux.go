//go:build linux

package backend

import (
	"time"

	"golang.org/x/sys/unix"
)

// Monotonic returns the current time from CLOCK_MONOTONIC, bypassing
// time.Now's wall-clock/monotonic-reading split so every bounded wait in
// the primitive package measures elapsed time against the same clock
// source regardless of system-clock adjustments (spec.md §9's Open
// Question on clock choice).
func Monotonic() time.Time {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return time.Now()
	}
	return time.Unix(ts.Sec, ts.Nsec)
}
