package backend

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestHostedSpawnThreadRuns(t *testing.T) {
	b := NewHosted()
	var ran atomic.Bool
	done := make(chan struct{})
	thread, err := b.SpawnThread(ThreadConfig{
		Name: "test",
		Entry: func() {
			ran.Store(true)
			close(done)
		},
	})
	if err != nil {
		t.Fatalf("SpawnThread() error = %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for thread entry to run")
	}
	thread.Join()
	if !ran.Load() {
		t.Error("expected entry function to have run")
	}
}

func TestHostedSpawnThreadRequiresEntry(t *testing.T) {
	b := NewHosted()
	if _, err := b.SpawnThread(ThreadConfig{}); err != ErrNotSupported {
		t.Errorf("expected ErrNotSupported for nil entry, got %v", err)
	}
}

func TestHostedAffinityDoesNotBlockExecution(t *testing.T) {
	b := NewHosted()
	done := make(chan struct{})
	_, err := b.SpawnThread(ThreadConfig{
		Entry:    func() { close(done) },
		Affinity: []int{0},
	})
	if err != nil {
		t.Fatalf("SpawnThread() error = %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("affinity-pinned thread never ran")
	}
}

func TestMonotonicIsNonDecreasing(t *testing.T) {
	a := Monotonic()
	time.Sleep(time.Millisecond)
	b := Monotonic()
	if b.Before(a) {
		t.Errorf("Monotonic clock went backwards: %v then %v", a, b)
	}
}

func TestBareMetalIsAdapterContractOnly(t *testing.T) {
	b := NewBareMetal()
	if _, err := b.SpawnThread(ThreadConfig{Entry: func() {}}); err != ErrNotSupported {
		t.Errorf("expected ErrNotSupported from bare-metal stub, got %v", err)
	}
}

func TestDefaultBackendOverride(t *testing.T) {
	original := defaultBackend()
	defer SetDefault(original)

	SetDefault(NewBareMetal())
	if Default().Name() != "baremetal-stub" {
		t.Errorf("Default().Name() = %q, want baremetal-stub", Default().Name())
	}
}

func TestBarrierRoundTrip(t *testing.T) {
	var flag uint32
	StoreRelease(&flag, 1)
	if LoadAcquire(&flag) != 1 {
		t.Error("expected LoadAcquire to observe the released store")
	}
}
