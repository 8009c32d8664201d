package abi

// Handle is an opaque reference returned by every primitive's create
// operation. Unlike the original source's raw pool-array pointers, a Handle
// packs a slot index and a per-slot generation counter (spec.md §9
// "Handle-as-pointer" design note) so a handle from a deleted-then-reused
// slot is detected rather than dereferenced.
//
// Bit layout (low to high): index in bits [0:32), generation in bits
// [32:64). A zero Handle never denotes a valid slot — index 0 generation 0
// is reserved as "never issued" because every real slot's first generation
// starts at 1 (see primitive.NewPool).
type Handle uint64

const (
	handleIndexBits = 32
	handleIndexMask = (uint64(1) << handleIndexBits) - 1
)

// InvalidHandle is returned by operations that fail before a slot is
// acquired.
const InvalidHandle Handle = 0

// NewHandle packs a slot index and generation into an opaque Handle.
func NewHandle(index uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<handleIndexBits | uint64(index)&handleIndexMask)
}

// Index extracts the slot index encoded in the handle.
func (h Handle) Index() uint32 {
	return uint32(uint64(h) & handleIndexMask)
}

// Generation extracts the generation counter encoded in the handle.
func (h Handle) Generation() uint32 {
	return uint32(uint64(h) >> handleIndexBits)
}

// Valid reports whether the handle is non-zero. It does not, by itself,
// prove the slot is still live — callers must also compare the generation
// against the pool's current slot generation (primitive.Pool.Valid).
func (h Handle) Valid() bool {
	return h != InvalidHandle
}
