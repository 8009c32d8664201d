//go:build !linux

package backend

import "time"

// Monotonic falls back to time.Now's monotonic reading on platforms where
// we have no build-tagged access to CLOCK_MONOTONIC directly. time.Now
// already carries a monotonic component that time.Sub uses transparently,
// so deadline math remains correct; only the ultra-low-level clock source
// differs from the Linux build.
func Monotonic() time.Time {
	return time.Now()
}
