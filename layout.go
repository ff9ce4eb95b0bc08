package objcache

import "unsafe"

// pageSize is the compile-time page size the page provider is contracted
// to hand back aligned, page-sized regions for. spec.md §4.A fixes this
// at 4096 regardless of the host's actual MMU page size.
const pageSize = 4096

// linkWordSize is the width of the inline free-list pointer stored at
// offset `size` inside every free buffer.
const linkWordSize = unsafe.Sizeof(uintptr(0))

// slabctlSize is fixed regardless of a cache's object size or alignment:
// our slabControl record holds only pointer- and int32-width fields (see
// slab.go), so unlike the original C design the constructed-state
// bitmap's size never feeds back into how many buffers fit on a page.
// DESIGN.md explains why that circularity would otherwise arise.
var slabctlSize = unsafe.Sizeof(slabControl{})

// layout holds the derived, immutable-after-creation constants spec.md
// §4.B computes from an object's size and alignment.
type layout struct {
	bufferStride   uintptr
	buffersPerSlab int
	unusedTail     uintptr
	slabctlOffset  uintptr
}

// computeLayout implements spec.md §4.B exactly:
//
//	buffer_stride   = max(align, size + linkWordSize)
//	buffers_per_slab = floor((pageSize - slabctlSize) / buffer_stride)
//	unused_tail      = (pageSize - slabctlSize) mod buffer_stride
//	slabctl_offset   = buffers_per_slab*buffer_stride + unused_tail
func computeLayout(size, align uintptr) (layout, error) {
	if size == 0 {
		return layout{}, newInvalidArgument("size must be greater than zero")
	}
	if align != 0 && align&(align-1) != 0 {
		return layout{}, newInvalidArgument("align must be a power of two")
	}

	stride := size + linkWordSize
	if align > stride {
		stride = align
	}

	available := uintptr(pageSize) - slabctlSize
	n := available / stride
	if n < 1 {
		return layout{}, newObjectTooLarge(size, align, stride)
	}

	unused := available % stride
	return layout{
		bufferStride:   stride,
		buffersPerSlab: int(n),
		unusedTail:     unused,
		slabctlOffset:  n*stride + unused,
	}, nil
}
