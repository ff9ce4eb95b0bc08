package objcache

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/bits-and-blooms/bloom/v3"
)

// debugTracker is the opt-in double-free guard described in SPEC_FULL.md.
// spec.md §4.F is explicit that Free does not promise to detect a pointer
// it didn't hand out; this never changes that contract. It only adds a
// best-effort, opt-in net over the narrower case of freeing the same
// pointer twice in a row, grounded in the teacher's use of
// bits-and-blooms/bloom/v3 for its gossip seen-message filter
// (kernel/core/mesh/routing/gossip.go).
type debugTracker struct {
	filter *bloom.BloomFilter
}

func newDebugTracker(expectedFrees uint, falsePositiveRate float64) *debugTracker {
	return &debugTracker{filter: bloom.NewWithEstimates(expectedFrees, falsePositiveRate)}
}

func keyFor(ptr unsafe.Pointer) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(uintptr(ptr)))
	return b[:]
}

// observeFree records a pointer as freed. Bloom filters have no false
// negatives, so a genuine double free is always flagged; a false
// positive is possible (the filter claims "seen" for a pointer that was
// never freed) which is why the caller must corroborate against the
// slab's own free list before treating this as conclusive.
func (t *debugTracker) observeFree(ptr unsafe.Pointer) (alreadySeen bool) {
	if t == nil {
		return false
	}
	k := keyFor(ptr)
	seen := t.filter.Test(k)
	t.filter.Add(k)
	return seen
}

func doubleFreePanic(ptr unsafe.Pointer) {
	panic(fmt.Sprintf("%v: pointer %p was already free", ErrDoubleFree, ptr))
}
