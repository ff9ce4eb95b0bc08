package objcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructedTracker_StartsClear(t *testing.T) {
	tr := newConstructedTracker(130)
	defer tr.release()

	for i := 0; i < 130; i++ {
		assert.False(t, tr.isSet(i))
	}
}

func TestConstructedTracker_SetIsIndependentPerBit(t *testing.T) {
	tr := newConstructedTracker(130)
	defer tr.release()

	tr.set(0)
	tr.set(63)
	tr.set(64)
	tr.set(129)

	for i := 0; i < 130; i++ {
		want := i == 0 || i == 63 || i == 64 || i == 129
		assert.Equal(t, want, tr.isSet(i), "bit %d", i)
	}
}
