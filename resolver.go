package objcache

import "unsafe"

// slabBase recovers the page-aligned base address of the slab that owns
// obj, per spec.md §4.F: mask off the low bits below pageSize.
func slabBase(obj unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(uintptr(obj) &^ uintptr(pageSize-1))
}

// resolveSlab maps an object pointer to its owning slab's control
// record in O(1): mask to the page base, then read the control record
// at the cache's fixed slabctlOffset. Behavior is undefined (per
// spec.md §4.F) if obj was not produced by Alloc on this cache — this
// function does not and cannot validate that.
func (c *Cache) resolveSlab(obj unsafe.Pointer) *slabControl {
	base := slabBase(obj)
	return slabControlAt(base, c.layout.slabctlOffset)
}
