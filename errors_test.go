package osal

import (
	"errors"
	"testing"

	"github.com/osalkit/osal/internal/abi"
)

func TestNewError(t *testing.T) {
	err := NewError("MutexLock", "mutex", abi.InvalidParam, "handle out of range")

	if err.Op != "MutexLock" {
		t.Errorf("Op = %q, want MutexLock", err.Op)
	}
	if err.Status != abi.InvalidParam {
		t.Errorf("Status = %v, want InvalidParam", err.Status)
	}

	want := "osal: handle out of range (op=MutexLock)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorMessageFallsBackToStatusString(t *testing.T) {
	err := NewError("QueueSend", "queue", abi.Full, "")
	want := "osal: FULL (op=QueueSend)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNewResourceError(t *testing.T) {
	err := NewResourceError("SemaphoreGive", "semaphore", 7, abi.Busy, "count saturated")
	if err.ResourceID != 7 {
		t.Errorf("ResourceID = %d, want 7", err.ResourceID)
	}
	if !errors.Is(err, StatusError(abi.Busy)) {
		t.Error("expected errors.Is to match on status sentinel")
	}
}

func TestWrapErrorPreservesStatus(t *testing.T) {
	inner := NewResourceError("internal", "timer", 3, abi.Timeout, "deadline exceeded")
	wrapped := WrapError("TimerWait", inner)

	if wrapped.Op != "TimerWait" {
		t.Errorf("Op = %q, want TimerWait", wrapped.Op)
	}
	if wrapped.Status != abi.Timeout {
		t.Errorf("Status = %v, want Timeout", wrapped.Status)
	}
	if wrapped.ResourceID != 3 {
		t.Errorf("ResourceID = %d, want 3", wrapped.ResourceID)
	}
}

func TestWrapErrorNil(t *testing.T) {
	if WrapError("op", nil) != nil {
		t.Error("expected WrapError(nil) to return nil")
	}
}

func TestWrapErrorGenericCause(t *testing.T) {
	cause := errors.New("disk gone")
	wrapped := WrapError("DeviceInit", cause)

	if wrapped.Status != abi.GenericError {
		t.Errorf("Status = %v, want GenericError", wrapped.Status)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected Unwrap chain to reach the original cause")
	}
}

func TestIsStatus(t *testing.T) {
	err := NewError("EventWait", "event", abi.Timeout, "no bits set in time")

	if !IsStatus(err, abi.Timeout) {
		t.Error("IsStatus should report true for matching status")
	}
	if IsStatus(err, abi.Busy) {
		t.Error("IsStatus should report false for non-matching status")
	}
	if IsStatus(nil, abi.Timeout) {
		t.Error("IsStatus should report false for nil error")
	}
}

func TestStatusErrorSentinel(t *testing.T) {
	err := NewResourceError("QueueReceive", "queue", 1, abi.Empty, "")
	if !errors.Is(err, StatusError(abi.Empty)) {
		t.Error("expected errors.Is to compare against a bare status sentinel")
	}
	if errors.Is(err, StatusError(abi.Full)) {
		t.Error("expected errors.Is to reject a mismatched status sentinel")
	}
}
