//go:build linux

package objcache

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"
)

func init() {
	newNativePageProviderFn = func() PageProvider { return NewNativePageProvider() }
}

// NativePageProvider hands out anonymous, page-aligned mappings via
// syscall.Mmap, in the same style the teacher's SharedMemoryProvider
// (kernel/threads/sab/hal_native.go) uses syscall.Mmap over a file-backed
// descriptor. Anonymous private mappings on Linux are always aligned to
// the system page size, which on every architecture this module targets
// is pageSize (4096) or a multiple of it.
type NativePageProvider struct {
	mu    sync.Mutex
	pages map[uintptr][]byte
}

func NewNativePageProvider() *NativePageProvider {
	return &NativePageProvider{pages: make(map[uintptr][]byte)}
}

func (p *NativePageProvider) AcquirePage() (unsafe.Pointer, error) {
	data, err := syscall.Mmap(-1, 0, pageSize, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_ANON|syscall.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap page: %w", err)
	}

	base := unsafe.Pointer(&data[0])
	if uintptr(base)%pageSize != 0 {
		_ = syscall.Munmap(data)
		return nil, fmt.Errorf("mmap returned unaligned page at %p", base)
	}

	p.mu.Lock()
	p.pages[uintptr(base)] = data
	p.mu.Unlock()

	return base, nil
}

func (p *NativePageProvider) ReleasePage(base unsafe.Pointer) {
	p.mu.Lock()
	data, ok := p.pages[uintptr(base)]
	if ok {
		delete(p.pages, uintptr(base))
	}
	p.mu.Unlock()

	if ok {
		_ = syscall.Munmap(data)
	}
}
