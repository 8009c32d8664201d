package primitive

import (
	"sync"
	"testing"
	"time"

	"github.com/osalkit/osal/internal/abi"
	"github.com/osalkit/osal/internal/backend"
)

func TestTaskCreateRunsEntry(t *testing.T) {
	r := NewTaskRegistry(backend.NewHosted())
	var ran sync.WaitGroup
	ran.Add(1)

	h, status := r.Create("worker", 5, nil, func(arg any) {
		defer ran.Done()
		if arg != "payload" {
			t.Errorf("arg = %v, want payload", arg)
		}
	}, "payload")
	if !status.OK() {
		t.Fatalf("Create() status = %v", status)
	}
	if h == abi.InvalidHandle {
		t.Fatal("expected a valid handle")
	}

	waitOrTimeout(t, &ran)
}

func TestTaskCreateRejectsNilEntry(t *testing.T) {
	r := NewTaskRegistry(backend.NewHosted())
	if _, status := r.Create("bad", 0, nil, nil, nil); status != abi.NullPointer {
		t.Errorf("status = %v, want NullPointer", status)
	}
}

func TestTaskCreateRejectsBadPriority(t *testing.T) {
	r := NewTaskRegistry(backend.NewHosted())
	if _, status := r.Create("bad", 99, nil, func(any) {}, nil); status != abi.InvalidParam {
		t.Errorf("status = %v, want InvalidParam", status)
	}
}

func TestTaskCurrentHandleInsideEntry(t *testing.T) {
	r := NewTaskRegistry(backend.NewHosted())
	seen := make(chan abi.Handle, 1)

	h, status := r.Create("self-aware", 1, nil, func(any) {
		seen <- r.CurrentHandle()
	}, nil)
	if !status.OK() {
		t.Fatalf("Create() status = %v", status)
	}

	select {
	case got := <-seen:
		if got != h {
			t.Errorf("CurrentHandle() inside entry = %v, want %v", got, h)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for task to observe its own handle")
	}
}

func TestTaskSuspendResume(t *testing.T) {
	r := NewTaskRegistry(backend.NewHosted())
	resumed := make(chan struct{})

	h, status := r.Create("suspendable", 1, nil, func(any) {
		r.Suspend(r.CurrentHandle())
		close(resumed)
	}, nil)
	if !status.OK() {
		t.Fatalf("Create() status = %v", status)
	}

	time.Sleep(20 * time.Millisecond)
	if status := r.Resume(h); !status.OK() {
		t.Fatalf("Resume() status = %v", status)
	}

	select {
	case <-resumed:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for resume to unblock the task")
	}
}

func TestTaskDeleteSelf(t *testing.T) {
	r := NewTaskRegistry(backend.NewHosted())
	done := make(chan struct{})

	h, status := r.Create("self-delete", 1, nil, func(any) {
		defer close(done)
		self := r.CurrentHandle()
		r.Delete(self)
	}, nil)
	if !status.OK() {
		t.Fatalf("Create() status = %v", status)
	}
	_ = h

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for self-delete to complete")
	}
}

func TestTaskDeletePendingVisibleToEntry(t *testing.T) {
	r := NewTaskRegistry(backend.NewHosted())
	exited := make(chan struct{})

	h, status := r.Create("cooperative", 1, nil, func(any) {
		self := r.CurrentHandle()
		for !r.IsDeletePending(self) {
			time.Sleep(time.Millisecond)
		}
		close(exited)
	}, nil)
	if !status.OK() {
		t.Fatalf("Create() status = %v", status)
	}

	st, _ := r.pool.Get(h)
	st.mu.Lock()
	st.deletePending = true
	st.mu.Unlock()

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for task to observe delete-pending")
	}
}

func waitOrTimeout(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for task entry to complete")
	}
}
