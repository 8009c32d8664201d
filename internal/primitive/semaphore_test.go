package primitive

import (
	"testing"
	"time"

	"github.com/osalkit/osal/internal/abi"
	"github.com/osalkit/osal/internal/constants"
)

func TestSemaphoreCountingBoundaryScenario(t *testing.T) {
	// spec.md §8 boundary scenario 1: counting(max=3, init=0).
	r := NewSemaphoreRegistry()
	h, status := r.Create(0, 3)
	if !status.OK() {
		t.Fatalf("Create() status = %v", status)
	}

	for i := 0; i < 4; i++ {
		if status := r.Give(h); !status.OK() {
			t.Fatalf("Give() #%d status = %v", i, status)
		}
	}

	for i := 0; i < 3; i++ {
		if status := r.Take(h, constants.TimeoutPoll); !status.OK() {
			t.Fatalf("Take() #%d status = %v", i, status)
		}
	}
	if status := r.Take(h, constants.TimeoutPoll); status != abi.Timeout {
		t.Errorf("4th Take() status = %v, want Timeout", status)
	}
}

func TestSemaphoreCreateRejectsInvalidParams(t *testing.T) {
	r := NewSemaphoreRegistry()
	if _, status := r.Create(5, 3); status != abi.InvalidParam {
		t.Errorf("Create(5,3) status = %v, want InvalidParam", status)
	}
	if _, status := r.Create(0, 0); status != abi.InvalidParam {
		t.Errorf("Create(0,0) status = %v, want InvalidParam", status)
	}
}

func TestSemaphoreBinary(t *testing.T) {
	r := NewSemaphoreRegistry()
	h, _ := r.CreateBinary(1)
	if status := r.Take(h, constants.TimeoutPoll); !status.OK() {
		t.Fatalf("Take() status = %v", status)
	}
	if status := r.Take(h, constants.TimeoutPoll); status != abi.Timeout {
		t.Errorf("second Take() status = %v, want Timeout", status)
	}
	r.Give(h)
	r.Give(h) // excess give past max=1 must be silently dropped
	count, _ := r.Count(h)
	if count != 1 {
		t.Errorf("Count() = %d, want 1 (excess give dropped)", count)
	}
}

func TestSemaphoreGiveFromISRDelegates(t *testing.T) {
	r := NewSemaphoreRegistry()
	h, _ := r.Create(0, 1)
	if status := r.GiveFromISR(h); !status.OK() {
		t.Fatalf("GiveFromISR() status = %v", status)
	}
	if status := r.Take(h, constants.TimeoutPoll); !status.OK() {
		t.Fatalf("Take() status = %v", status)
	}
}

func TestSemaphoreBoundedWaitTimesOut(t *testing.T) {
	r := NewSemaphoreRegistry()
	h, _ := r.Create(0, 1)

	start := time.Now()
	status := r.Take(h, 30)
	elapsed := time.Since(start)

	if status != abi.Timeout {
		t.Fatalf("Take() status = %v, want Timeout", status)
	}
	if elapsed < 25*time.Millisecond {
		t.Errorf("Take() returned after %v, too soon", elapsed)
	}
}

func TestSemaphoreForeverWaitWakesOnGive(t *testing.T) {
	r := NewSemaphoreRegistry()
	h, _ := r.Create(0, 1)

	done := make(chan abi.Status, 1)
	go func() {
		done <- r.Take(h, constants.TimeoutForever)
	}()

	time.Sleep(20 * time.Millisecond)
	r.Give(h)

	select {
	case status := <-done:
		if !status.OK() {
			t.Errorf("Take() status = %v, want OK", status)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for forever-wait take to succeed")
	}
}

func TestSemaphoreDeleteWakesPendingWaiter(t *testing.T) {
	r := NewSemaphoreRegistry()
	h, _ := r.Create(0, 1)

	done := make(chan abi.Status, 1)
	go func() {
		done <- r.Take(h, constants.TimeoutForever)
	}()

	time.Sleep(20 * time.Millisecond)
	r.Delete(h)

	select {
	case status := <-done:
		if status != abi.InvalidParam {
			t.Errorf("Take() after Delete() status = %v, want InvalidParam", status)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for deleted-semaphore waiter to wake")
	}
}

func TestSemaphoreHappensBeforeOrdering(t *testing.T) {
	// spec.md §5: a successful give happens-before the corresponding take.
	r := NewSemaphoreRegistry()
	h, _ := r.Create(0, 1)
	shared := 0

	go func() {
		shared = 42
		r.Give(h)
	}()

	if status := r.Take(h, constants.TimeoutForever); !status.OK() {
		t.Fatalf("Take() status = %v", status)
	}
	if shared != 42 {
		t.Errorf("shared = %d, want 42 (give must happen-before take)", shared)
	}
}
