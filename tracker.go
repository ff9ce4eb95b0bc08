package objcache

import "runtime"

// constructedTracker is the constructed-state bitmap of spec.md §4.G: one
// bit per buffer in a slab, set the first time that buffer is handed out
// by Alloc, cleared only when the owning slab is destroyed.
//
// The bitmap itself lives on the Go heap (a plain []uint64), not inside
// the raw page the slab occupies. The page comes from a PageProvider and
// is invisible to the garbage collector; a Go slice header written
// directly into that memory would leave its backing array with no GC
// root and subject to collection out from under the slab. Instead the
// slab's raw control record (slabControl, in slab.go) holds only an
// unsafe.Pointer to this tracker, and the tracker pins itself with a
// runtime.Pinner for as long as it is reachable from the raw page —
// exactly the pattern the standard library recommends for referencing
// Go-managed memory from manually-managed memory.
type constructedTracker struct {
	bits   []uint64
	count  int
	pinner runtime.Pinner
}

func newConstructedTracker(buffersPerSlab int) *constructedTracker {
	t := &constructedTracker{
		bits:  make([]uint64, (buffersPerSlab+63)/64),
		count: buffersPerSlab,
	}
	t.pinner.Pin(t)
	return t
}

func (t *constructedTracker) isSet(index int) bool {
	return t.bits[index/64]&(1<<uint(index%64)) != 0
}

func (t *constructedTracker) set(index int) {
	t.bits[index/64] |= 1 << uint(index%64)
}

// release unpins the tracker so it can be garbage collected once its
// owning slab's page has been returned to the page provider.
func (t *constructedTracker) release() {
	t.pinner.Unpin()
}
