package objcache

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPageProvider_ReturnsAlignedPages(t *testing.T) {
	p := NewInMemoryPageProvider()

	for i := 0; i < 8; i++ {
		base, err := p.AcquirePage()
		require.NoError(t, err)
		assert.Zero(t, uintptr(base)%pageSize)
	}
}

func TestInMemoryPageProvider_PagesAreWritable(t *testing.T) {
	p := NewInMemoryPageProvider()

	base, err := p.AcquirePage()
	require.NoError(t, err)

	buf := (*[pageSize]byte)(base)
	buf[0] = 0xAB
	buf[pageSize-1] = 0xCD
	assert.Equal(t, byte(0xAB), buf[0])
	assert.Equal(t, byte(0xCD), buf[pageSize-1])
}

func TestInMemoryPageProvider_ReleaseDropsRetention(t *testing.T) {
	p := NewInMemoryPageProvider()

	base, err := p.AcquirePage()
	require.NoError(t, err)

	p.mu.Lock()
	_, tracked := p.pages[uintptr(base)]
	p.mu.Unlock()
	require.True(t, tracked)

	p.ReleasePage(base)

	p.mu.Lock()
	_, tracked = p.pages[uintptr(base)]
	p.mu.Unlock()
	assert.False(t, tracked)
}

func TestDefaultPageProvider_IsNotNil(t *testing.T) {
	p := DefaultPageProvider()
	require.NotNil(t, p)

	base, err := p.AcquirePage()
	require.NoError(t, err)
	assert.NotEqual(t, unsafe.Pointer(nil), base)
	p.ReleasePage(base)
}
