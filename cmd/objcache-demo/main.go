package main

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/aatbip/objcache"
)

type connBuffer struct {
	id   int
	data [64]byte
}

func main() {
	fmt.Println("objcache demo starting...")

	constructed := 0
	cache, err := objcache.NewWithOptions(
		"conn-buffers",
		unsafe.Sizeof(connBuffer{}),
		unsafe.Alignof(connBuffer{}),
		func(obj unsafe.Pointer, size uintptr) {
			constructed++
			buf := (*connBuffer)(obj)
			buf.id = constructed
		},
		func(obj unsafe.Pointer, size uintptr) {
			buf := (*connBuffer)(obj)
			fmt.Println("destroying buffer", buf.id)
		},
		objcache.CacheOptions{
			PageProvider:  objcache.DefaultPageProvider(),
			Logger:        objcache.NewLogger("objcache-demo", objcache.LevelInfo, os.Stdout),
			DebugTracking: true,
		},
	)
	if err != nil {
		fmt.Println("failed to create cache:", err)
		os.Exit(1)
	}
	defer cache.Destroy()

	var held []unsafe.Pointer
	for i := 0; i < 5; i++ {
		obj, err := cache.Alloc()
		if err != nil {
			fmt.Println("alloc failed:", err)
			os.Exit(1)
		}
		held = append(held, obj)
	}

	for _, obj := range held {
		cache.Free(obj)
	}

	info := cache.Info()
	fmt.Printf("cache %q: %d slabs, %d buffers/slab, %d bytes/buffer\n",
		info.Name, info.SlabCount, info.BuffersPerSlab, info.BufferStride)

	for _, snap := range objcache.DefaultRegistry.Snapshot() {
		fmt.Printf("registry: %s slabs=%d\n", snap.Name, snap.SlabCount)
	}
}
