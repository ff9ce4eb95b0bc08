package objcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLayout_RejectsZeroSize(t *testing.T) {
	_, err := computeLayout(0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestComputeLayout_RejectsNonPowerOfTwoAlign(t *testing.T) {
	_, err := computeLayout(16, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestComputeLayout_RejectsObjectTooLargeForOnePage(t *testing.T) {
	_, err := computeLayout(pageSize*2, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrObjectTooLarge)
}

func TestComputeLayout_SelfConsistent(t *testing.T) {
	l, err := computeLayout(12, 0)
	require.NoError(t, err)

	assert.Equal(t, linkWordSize+12, l.bufferStride)

	available := uintptr(pageSize) - slabctlSize
	assert.Equal(t, int(available/l.bufferStride), l.buffersPerSlab)
	assert.Equal(t, available%l.bufferStride, l.unusedTail)
	assert.Equal(t, uintptr(l.buffersPerSlab)*l.bufferStride+l.unusedTail, l.slabctlOffset)

	// The whole layout must fit exactly within one page.
	assert.LessOrEqual(t, l.slabctlOffset+slabctlSize, uintptr(pageSize))
}

func TestComputeLayout_AlignmentWidensStride(t *testing.T) {
	l, err := computeLayout(8, 64)
	require.NoError(t, err)
	assert.Equal(t, uintptr(64), l.bufferStride)
}

func TestComputeLayout_AlignmentNarrowerThanSizePlusLinkIsIgnored(t *testing.T) {
	l, err := computeLayout(100, 8)
	require.NoError(t, err)
	assert.Equal(t, uintptr(100)+linkWordSize, l.bufferStride)
}
