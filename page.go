package objcache

import "unsafe"

// PageProvider is the single external capability spec.md §4.A requires:
// acquire a page-sized, page-aligned region of memory, and release one
// previously acquired. Implementations must return addresses aligned to
// pageSize — the address→slab resolver (resolver.go) depends on masking
// the low bits of an object pointer to recover its slab's base, so an
// unaligned page silently corrupts every lookup against it.
type PageProvider interface {
	AcquirePage() (unsafe.Pointer, error)
	ReleasePage(unsafe.Pointer)
}

// DefaultPageProvider returns the page provider a Cache uses when none is
// supplied via CacheOptions.PageProvider: a native, OS-backed provider on
// platforms where one exists, and the portable in-memory provider
// everywhere else.
func DefaultPageProvider() PageProvider {
	if p := newNativePageProvider(); p != nil {
		return p
	}
	return NewInMemoryPageProvider()
}

// newNativePageProviderFn is overridden (via build tags) on platforms that
// have a real mmap-backed implementation; it returns nil elsewhere so
// DefaultPageProvider falls back to the portable provider.
var newNativePageProviderFn = func() PageProvider { return nil }

func newNativePageProvider() PageProvider {
	return newNativePageProviderFn()
}
