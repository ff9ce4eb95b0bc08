// Package objcache implements a slab-based object cache: a fixed-size
// object allocator that amortizes allocation cost by preformatting
// page-sized slabs into many equally sized buffers, maintaining a
// per-slab free list, and reusing constructed objects across allocation
// cycles.
//
// A Cache is single-threaded: spec.md §5 requires callers to serialize
// every operation on a given Cache themselves. Distinct Caches are
// independent and may be used from distinct goroutines as long as no
// data is shared through the objects they hand out.
package objcache

import "unsafe"

// Constructor initializes an object's size bytes the first time a buffer
// is ever handed out by Alloc. It runs synchronously inside Alloc.
type Constructor func(obj unsafe.Pointer, size uintptr)

// Destructor tears down an object. It runs only from Destroy, once per
// buffer that was ever constructed over its lifetime.
type Destructor func(obj unsafe.Pointer, size uintptr)

// Cache is a handle identifying one kind of object, per spec.md §3.
type Cache struct {
	name  string
	size  uintptr
	align uintptr
	ctor  Constructor
	dtor  Destructor

	layout  layout
	pages   PageProvider
	current *slabControl

	slabCount int

	debug    *debugTracker
	logger   *Logger
	registry *Registry
}

// CacheOptions configures the ambient and domain-stack behavior layered
// on top of the core allocator. None of these fields affect the layout
// math (spec.md §4.B), which is determined solely by size and align.
type CacheOptions struct {
	// PageProvider supplies pages. Defaults to DefaultPageProvider().
	PageProvider PageProvider
	// Logger receives diagnostic events from the resiliency wrapper.
	// Defaults to a no-op logger.
	Logger *Logger
	// DebugTracking enables the opt-in Bloom-filter double-free guard
	// described in SPEC_FULL.md. Off by default; it is strictly
	// additive and never required for correct use.
	DebugTracking bool
	// Resilience, if non-nil, wraps PageProvider in a
	// ResilientPageProvider using these settings.
	Resilience *ResilienceOptions
	// Registry overrides where this cache registers itself for
	// introspection. Defaults to DefaultRegistry. SkipRegistry disables
	// registration entirely.
	Registry     *Registry
	SkipRegistry bool
}

// DefaultCacheOptions returns the options New uses.
func DefaultCacheOptions() CacheOptions {
	return CacheOptions{
		PageProvider: DefaultPageProvider(),
		Logger:       NopLogger(),
	}
}

// New creates a Cache with default options. It performs spec.md §4.B's
// layout calculation; no pages are allocated until the first Alloc.
func New(name string, size, align uintptr, ctor Constructor, dtor Destructor) (*Cache, error) {
	return NewWithOptions(name, size, align, ctor, dtor, DefaultCacheOptions())
}

// NewWithOptions is New with explicit control over the ambient/domain
// stack (page provider, logging, debug tracking, resiliency, registry).
func NewWithOptions(name string, size, align uintptr, ctor Constructor, dtor Destructor, opts CacheOptions) (*Cache, error) {
	l, err := computeLayout(size, align)
	if err != nil {
		return nil, err
	}

	pages := opts.PageProvider
	if pages == nil {
		pages = DefaultPageProvider()
	}

	logger := opts.Logger
	if logger == nil {
		logger = NopLogger()
	}

	if opts.Resilience != nil {
		ro := *opts.Resilience
		if ro.Logger == nil {
			ro.Logger = logger
		}
		rp, err := NewResilientPageProvider(name, pages, ro)
		if err != nil {
			return nil, err
		}
		pages = rp
	}

	c := &Cache{
		name:   name,
		size:   size,
		align:  align,
		ctor:   ctor,
		dtor:   dtor,
		layout: l,
		pages:  pages,
		logger: logger,
	}

	if opts.DebugTracking {
		c.debug = newDebugTracker(uint(1024), 0.01)
	}

	if !opts.SkipRegistry {
		reg := opts.Registry
		if reg == nil {
			reg = DefaultRegistry
		}
		if err := reg.register(c); err != nil {
			return nil, err
		}
		c.registry = reg
	}

	return c, nil
}

// Name returns the cache's display name.
func (c *Cache) Name() string { return c.name }

// Alloc implements spec.md §4.E cache_alloc.
func (c *Cache) Alloc() (unsafe.Pointer, error) {
	switch {
	case c.current == nil:
		ctl, err := c.newSlab()
		if err != nil {
			return nil, err
		}
		c.current = ctl

	case c.current.freebuf == nil:
		if found := ringScanForAllocatable(c.current); found != nil {
			c.current = found
		} else {
			ctl, err := c.newSlab()
			if err != nil {
				return nil, err
			}
			c.current = ctl
		}
	}

	ctl := c.current
	link := ctl.freebuf
	ctl.freebuf = readLink(link)
	ctl.refCount++

	obj := objectFromLink(link, c.size)
	index := bufferIndex(ctl.selfBase, obj, c.layout.bufferStride)

	tracker := ctl.trackerPtr()
	if !tracker.isSet(index) {
		if c.ctor != nil {
			c.ctor(obj, c.size)
		}
		tracker.set(index)
	}

	return obj, nil
}

// newSlab acquires a page and formats it as a fresh slab, splicing it
// into the ring immediately after the current slab if one exists.
func (c *Cache) newSlab() (*slabControl, error) {
	base, err := c.pages.AcquirePage()
	if err != nil {
		return nil, newOutOfMemory(err)
	}

	ctl := initSlab(base, c.size, c.layout)
	if c.current != nil {
		ringInsertAfter(c.current, ctl)
	}
	c.slabCount++
	return ctl, nil
}

// Free implements spec.md §4.E cache_free: ptr must have been returned by
// a prior Alloc on this Cache and not yet freed. Passing any other
// pointer is undefined behavior per spec.md §4.F — Free does not and
// cannot validate that, beyond the opt-in best-effort guard enabled by
// CacheOptions.DebugTracking.
func (c *Cache) Free(obj unsafe.Pointer) {
	ctl := c.resolveSlab(obj)
	link := linkWordOf(obj, c.size)

	if c.debug != nil && c.debug.observeFree(obj) && freeListContains(ctl, link) {
		doubleFreePanic(obj)
	}

	writeLink(link, ctl.freebuf)
	ctl.freebuf = link
	ctl.refCount--

	c.rebalanceAfterFree(ctl)
}

func freeListContains(ctl *slabControl, link unsafe.Pointer) bool {
	for cur := ctl.freebuf; cur != nil; cur = readLink(cur) {
		if cur == link {
			return true
		}
	}
	return false
}

// rebalanceAfterFree preserves the ring's empty→partial→complete
// ordering invariant, per spec.md §4.E's four cases.
func (c *Cache) rebalanceAfterFree(ctl *slabControl) {
	if ctl.next == ctl {
		// Single slab: nothing to rebalance.
		c.current = ctl
		return
	}

	if ctl.refCount == 0 {
		// Slab just became complete. Walk forward to the next complete
		// slab (or back to ctl itself, if none exists) and insert
		// immediately before it — i.e. after the last partial.
		cur := ctl.next
		for cur.refCount != 0 {
			cur = cur.next
		}
		ringInsertAfter(cur.prev, ctl)
		c.current = ctl
		return
	}

	if ctl.next.freebuf != nil {
		// Slab is partial and already sits ahead of another
		// partial/complete slab: already correctly positioned.
		c.current = ctl
		return
	}

	// Slab is partial (possibly just transitioned from empty) and its
	// successor is empty. Walk forward to the empty/partial boundary and
	// insert immediately after the last empty slab.
	cur := ctl.next
	for cur.freebuf == nil {
		cur = cur.next
	}
	ringInsertAfter(cur.prev, ctl)
	c.current = ctl
}

// Destroy implements spec.md §4.E cache_destroy, resolving Open Question
// 1 in spec.md §9: it iterates the entire ring, not just the current
// slab, running dtor on every buffer that was ever constructed before
// releasing each page.
func (c *Cache) Destroy() {
	if c.current != nil {
		start := c.current
		cur := start
		for {
			next := cur.next
			wrapped := next == start
			c.destroySlab(cur)
			if wrapped {
				break
			}
			cur = next
		}
	}
	c.current = nil

	if c.registry != nil {
		c.registry.deregister(c.name)
		c.registry = nil
	}
}

func (c *Cache) destroySlab(ctl *slabControl) {
	tracker := ctl.trackerPtr()
	if c.dtor != nil {
		for i := 0; i < tracker.count; i++ {
			if tracker.isSet(i) {
				obj := bufferAt(ctl.selfBase, i, c.layout.bufferStride)
				c.dtor(obj, c.size)
			}
		}
	}
	tracker.release()
	c.pages.ReleasePage(ctl.selfBase)
}

// CacheInfo is the read-only diagnostic snapshot spec.md §4.E's
// cache_info returns.
type CacheInfo struct {
	Name            string
	CacheStructSize uintptr
	Unused          uintptr
	SlabControlSize uintptr
	BufferStride    uintptr
	BuffersPerSlab  int
	SlabCount       int
}

// Info implements spec.md §4.E cache_info: a pure read, no mutation.
func (c *Cache) Info() CacheInfo {
	return CacheInfo{
		Name:            c.name,
		CacheStructSize: unsafe.Sizeof(*c),
		Unused:          c.layout.unusedTail,
		SlabControlSize: slabctlSize,
		BufferStride:    c.layout.bufferStride,
		BuffersPerSlab:  c.layout.buffersPerSlab,
		SlabCount:       c.slabCount,
	}
}
