package objcache

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestDebugTracker_NilSafe(t *testing.T) {
	var tr *debugTracker
	assert.False(t, tr.observeFree(unsafe.Pointer(uintptr(1))))
}

func TestDebugTracker_FirstFreeIsNeverFlagged(t *testing.T) {
	tr := newDebugTracker(64, 0.01)
	ptr := unsafe.Pointer(uintptr(0x1000))
	assert.False(t, tr.observeFree(ptr))
}

func TestDebugTracker_RepeatedFreeIsFlagged(t *testing.T) {
	tr := newDebugTracker(64, 0.01)
	ptr := unsafe.Pointer(uintptr(0x2000))

	assert.False(t, tr.observeFree(ptr))
	assert.True(t, tr.observeFree(ptr))
}

func TestDebugTracker_DistinctPointersAreIndependent(t *testing.T) {
	tr := newDebugTracker(64, 0.01)
	a := unsafe.Pointer(uintptr(0x3000))
	b := unsafe.Pointer(uintptr(0x4000))

	assert.False(t, tr.observeFree(a))
	assert.False(t, tr.observeFree(b))
}
