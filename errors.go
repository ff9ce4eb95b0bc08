package objcache

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the public API. Wrap with fmt.Errorf and
// %w when adding context; callers should compare with errors.Is.
var (
	// ErrOutOfMemory is returned from Alloc when the page provider fails
	// to hand back a new page. Cache state is left unchanged.
	ErrOutOfMemory = errors.New("objcache: out of memory")

	// ErrObjectTooLarge is returned from New when the requested object
	// size and alignment leave room for fewer than one buffer per page.
	ErrObjectTooLarge = errors.New("objcache: object too large for one page")

	// ErrInvalidArgument is returned from New for a zero size or an
	// alignment that isn't a power of two.
	ErrInvalidArgument = errors.New("objcache: invalid argument")

	// ErrDoubleFree is raised (as a panic, not returned) by the debug
	// double-free tracker when CacheOptions.DebugTracking is enabled. See
	// debugtrack.go.
	ErrDoubleFree = errors.New("objcache: double free detected")

	// ErrUnknownCache is returned by Registry.Lookup for a name that was
	// never registered, or was already destroyed.
	ErrUnknownCache = errors.New("objcache: no such cache")
)

func newInvalidArgument(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, reason)
}

func newObjectTooLarge(size, align, stride uintptr) error {
	return fmt.Errorf("%w: size=%d align=%d stride=%d leaves no room for a buffer on a %d-byte page",
		ErrObjectTooLarge, size, align, stride, pageSize)
}

func newOutOfMemory(cause error) error {
	if cause == nil {
		return ErrOutOfMemory
	}
	return fmt.Errorf("%w: %v", ErrOutOfMemory, cause)
}
