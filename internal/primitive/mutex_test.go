package primitive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/osalkit/osal/internal/abi"
	"github.com/osalkit/osal/internal/constants"
)

func TestMutexCreateDeleteRoundTrip(t *testing.T) {
	r := NewMutexRegistry()
	h, status := r.Create()
	require.True(t, status.OK())
	require.Equal(t, abi.OK, r.Delete(h))
}

func TestMutexRecursiveLockUnlock(t *testing.T) {
	r := NewMutexRegistry()
	h, _ := r.Create()

	const owner = 1
	for i := 0; i < 3; i++ {
		require.Equal(t, abi.OK, r.Lock(h, owner, constants.TimeoutPoll), "lock #%d", i)
	}
	for i := 0; i < 2; i++ {
		require.Equal(t, abi.OK, r.Unlock(h, owner), "unlock #%d", i)
	}

	// Still held (3 locks, 2 unlocks): another owner's poll-lock must fail.
	require.Equal(t, abi.Timeout, r.Lock(h, 2, constants.TimeoutPoll))

	require.Equal(t, abi.OK, r.Unlock(h, owner))
	require.Equal(t, abi.OK, r.Lock(h, 2, constants.TimeoutPoll))
}

func TestMutexUnlockWithoutOwnershipFails(t *testing.T) {
	r := NewMutexRegistry()
	h, _ := r.Create()
	require.Equal(t, abi.InvalidState, r.Unlock(h, 1))
}

func TestMutexPollTimeoutWhenHeld(t *testing.T) {
	r := NewMutexRegistry()
	h, _ := r.Create()
	r.Lock(h, 1, constants.TimeoutPoll)

	require.Equal(t, abi.Timeout, r.Lock(h, 2, constants.TimeoutPoll))
}

func TestMutexBoundedWaitTimesOut(t *testing.T) {
	r := NewMutexRegistry()
	h, _ := r.Create()
	r.Lock(h, 1, constants.TimeoutPoll)

	start := time.Now()
	status := r.Lock(h, 2, 30)
	elapsed := time.Since(start)

	require.Equal(t, abi.Timeout, status)
	require.GreaterOrEqual(t, elapsed, 25*time.Millisecond)
	require.LessOrEqual(t, elapsed, 200*time.Millisecond)
}

func TestMutexBoundedWaitSucceedsOnRelease(t *testing.T) {
	r := NewMutexRegistry()
	h, _ := r.Create()
	r.Lock(h, 1, constants.TimeoutPoll)

	go func() {
		time.Sleep(20 * time.Millisecond)
		r.Unlock(h, 1)
	}()

	require.Equal(t, abi.OK, r.Lock(h, 2, 500))
}

func TestMutexForeverWaitSucceedsOnRelease(t *testing.T) {
	r := NewMutexRegistry()
	h, _ := r.Create()
	r.Lock(h, 1, constants.TimeoutPoll)

	done := make(chan abi.Status, 1)
	go func() {
		done <- r.Lock(h, 2, constants.TimeoutForever)
	}()

	time.Sleep(20 * time.Millisecond)
	r.Unlock(h, 1)

	select {
	case status := <-done:
		require.Equal(t, abi.OK, status)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for forever-wait lock to succeed")
	}
}

func TestMutexLockOnDeletedHandle(t *testing.T) {
	r := NewMutexRegistry()
	h, _ := r.Create()
	r.Delete(h)

	require.Equal(t, abi.InvalidParam, r.Lock(h, 1, constants.TimeoutPoll))
}

func TestMutexDeleteWakesPendingWaiter(t *testing.T) {
	r := NewMutexRegistry()
	h, _ := r.Create()
	r.Lock(h, 1, constants.TimeoutPoll)

	done := make(chan abi.Status, 1)
	go func() {
		done <- r.Lock(h, 2, constants.TimeoutForever)
	}()

	time.Sleep(20 * time.Millisecond)
	r.Delete(h)

	select {
	case status := <-done:
		require.Equal(t, abi.InvalidParam, status)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for deleted-mutex waiter to wake")
	}
}
