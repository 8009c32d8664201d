package primitive

import (
	"testing"

	"github.com/osalkit/osal/internal/abi"
)

func TestPoolAllocReturnsUniqueSlots(t *testing.T) {
	p := NewPool[int](2)

	h1, v1, status := p.Alloc(10)
	if !status.OK() {
		t.Fatalf("Alloc() status = %v", status)
	}
	h2, v2, status := p.Alloc(20)
	if !status.OK() {
		t.Fatalf("Alloc() status = %v", status)
	}
	if h1 == h2 {
		t.Fatal("expected distinct handles for distinct slots")
	}
	if *v1 != 10 || *v2 != 20 {
		t.Fatalf("got values %d, %d; want 10, 20", *v1, *v2)
	}
}

func TestPoolAllocExhaustion(t *testing.T) {
	p := NewPool[int](1)
	if _, _, status := p.Alloc(1); !status.OK() {
		t.Fatalf("first Alloc() status = %v", status)
	}
	if _, _, status := p.Alloc(2); status != abi.NoMemory {
		t.Errorf("second Alloc() status = %v, want NoMemory", status)
	}
}

func TestPoolFreeAndReuseBumpsGeneration(t *testing.T) {
	p := NewPool[int](1)
	h1, _, _ := p.Alloc(1)

	if status := p.Free(h1); !status.OK() {
		t.Fatalf("Free() status = %v", status)
	}

	h2, _, status := p.Alloc(2)
	if !status.OK() {
		t.Fatalf("Alloc() after Free() status = %v", status)
	}
	if h1 == h2 {
		t.Error("expected reused slot to carry a bumped generation")
	}
	if h1.Index() != h2.Index() {
		t.Error("expected the freed slot's index to be reused")
	}

	if _, status := p.Get(h1); status != abi.InvalidParam {
		t.Errorf("Get() on stale handle status = %v, want InvalidParam", status)
	}
}

func TestPoolDoubleFreeRejected(t *testing.T) {
	p := NewPool[int](1)
	h, _, _ := p.Alloc(1)
	if status := p.Free(h); !status.OK() {
		t.Fatalf("first Free() status = %v", status)
	}
	if status := p.Free(h); status != abi.InvalidParam {
		t.Errorf("second Free() status = %v, want InvalidParam", status)
	}
}

func TestPoolGetRejectsOutOfRangeIndex(t *testing.T) {
	p := NewPool[int](1)
	bogus := abi.NewHandle(5, 1)
	if _, status := p.Get(bogus); status != abi.InvalidParam {
		t.Errorf("Get() status = %v, want InvalidParam", status)
	}
}

func TestPoolInvalidHandleNeverIssued(t *testing.T) {
	p := NewPool[int](1)
	h, _, status := p.Alloc(42)
	if !status.OK() {
		t.Fatalf("Alloc() status = %v", status)
	}
	if h == abi.InvalidHandle {
		t.Error("first issued handle must not equal abi.InvalidHandle")
	}
}

func TestPoolLenTracksInUseSlots(t *testing.T) {
	p := NewPool[int](3)
	if p.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", p.Len())
	}
	h, _, _ := p.Alloc(1)
	p.Alloc(2)
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
	p.Free(h)
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}
}

func TestPoolValid(t *testing.T) {
	p := NewPool[int](1)
	h, _, _ := p.Alloc(1)
	if !p.Valid(h) {
		t.Error("expected freshly allocated handle to be valid")
	}
	p.Free(h)
	if p.Valid(h) {
		t.Error("expected freed handle to be invalid")
	}
}
