package memtrack

import (
	"testing"
	"unsafe"

	"github.com/osalkit/osal/internal/abi"
)

func TestAlignedAllocBoundaryScenario(t *testing.T) {
	// spec.md §8 boundary scenario 5.
	tr := NewTracker()

	p, status := tr.AllocAligned(64, 100)
	if !status.OK() {
		t.Fatalf("AllocAligned() status = %v", status)
	}
	addr := uintptr(unsafe.Pointer(&p[0]))
	if addr%64 != 0 {
		t.Errorf("address %#x is not 64-byte aligned", addr)
	}

	before := tr.Stats().TotalAllocated
	if status := tr.Free(p); !status.OK() {
		t.Fatalf("Free() status = %v", status)
	}
	after := tr.Stats().TotalAllocated
	if before-after != 100 {
		t.Errorf("total_allocated decreased by %d, want 100", before-after)
	}
}

func TestAllocFreeRoundTripZeroesTotal(t *testing.T) {
	tr := NewTracker()
	before := tr.Stats().TotalAllocated

	a, _ := tr.Alloc(40)
	b, _ := tr.Alloc(60)
	tr.Free(a)
	tr.Free(b)

	after := tr.Stats().TotalAllocated
	if after != before {
		t.Errorf("TotalAllocated = %d, want %d after freeing everything", after, before)
	}
}

func TestPeakTracksRunningMaximum(t *testing.T) {
	tr := NewTracker()
	a, _ := tr.Alloc(100)
	b, _ := tr.Alloc(200)
	tr.Free(a)
	tr.Alloc(50)

	stats := tr.Stats()
	if stats.PeakAllocated != 300 {
		t.Errorf("PeakAllocated = %d, want 300", stats.PeakAllocated)
	}
	_ = b
}

func TestFreeNilIsNoOp(t *testing.T) {
	tr := NewTracker()
	if status := tr.Free(nil); !status.OK() {
		t.Errorf("Free(nil) status = %v, want OK", status)
	}
}

func TestReallocNilActsAsAlloc(t *testing.T) {
	tr := NewTracker()
	p, status := tr.Realloc(nil, 32)
	if !status.OK() || len(p) != 32 {
		t.Fatalf("Realloc(nil, 32) = len %d, status %v", len(p), status)
	}
}

func TestReallocZeroActsAsFree(t *testing.T) {
	tr := NewTracker()
	p, _ := tr.Alloc(32)
	before := tr.Stats().TotalAllocated

	out, status := tr.Realloc(p, 0)
	if !status.OK() || out != nil {
		t.Fatalf("Realloc(p, 0) = %v, status %v, want nil, OK", out, status)
	}
	after := tr.Stats().TotalAllocated
	if before-after != 32 {
		t.Errorf("total_allocated decreased by %d, want 32", before-after)
	}
}

func TestReallocPreservesContent(t *testing.T) {
	tr := NewTracker()
	p, _ := tr.Alloc(8)
	copy(p, []byte("deadbeef"))

	grown, status := tr.Realloc(p, 16)
	if !status.OK() {
		t.Fatalf("Realloc() status = %v", status)
	}
	if string(grown[:8]) != "deadbeef" {
		t.Errorf("Realloc() lost content: got %q", grown[:8])
	}
}

func TestFreeUnknownPointerRejected(t *testing.T) {
	tr := NewTracker()
	if status := tr.Free([]byte{1, 2, 3}); status != abi.InvalidParam {
		t.Errorf("Free() status = %v, want InvalidParam", status)
	}
}

func TestAllocAlignedRejectsNonPowerOfTwo(t *testing.T) {
	tr := NewTracker()
	if _, status := tr.AllocAligned(24, 16); status != abi.InvalidParam {
		t.Errorf("AllocAligned(24, ...) status = %v, want InvalidParam", status)
	}
}

func TestResetPeak(t *testing.T) {
	tr := NewTracker()
	p, _ := tr.Alloc(500)
	tr.Free(p)
	tr.Alloc(10)

	tr.ResetPeak()
	stats := tr.Stats()
	if stats.PeakAllocated != stats.TotalAllocated {
		t.Errorf("PeakAllocated = %d, want %d after ResetPeak", stats.PeakAllocated, stats.TotalAllocated)
	}
}
