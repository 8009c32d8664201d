//go:build linux

package primitive

import "golang.org/x/sys/unix"

// nativeThreadID identifies the calling OS thread. It is only meaningful
// when called from a goroutine pinned with runtime.LockOSThread, which is
// true for every task entry function spawned by TaskRegistry.Create; callers
// outside a task (e.g. the goroutine that performed the Create call) share
// no guaranteed thread identity across calls and will simply miss the
// current map, which is the correct "no current task" answer.
func nativeThreadID() uint64 {
	return uint64(unix.Gettid())
}
