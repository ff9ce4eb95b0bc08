package objcache

import "sync"

// Registry is a central, thread-safe table of live caches, modeled on the
// teacher's EpochAllocator/SupervisorAllocTable central-registry pattern
// (kernel/threads/sab/epoch_allocator.go) and on /proc/slabinfo-style
// introspection: every Cache registers itself on New unless the caller
// opts out via CacheOptions.SkipRegistry, and deregisters on Destroy.
//
// Unlike Cache itself, Registry's own table is safe for concurrent use. It
// only ever touches Cache.Info(), never Alloc/Free; Snapshot reads each
// cache's Info without synchronizing with that cache's Alloc/Free, so it
// is subject to the same single-threaded rule as the cache itself.
type Registry struct {
	mu     sync.RWMutex
	caches map[string]*Cache
}

// NewRegistry creates an empty registry. Most callers use DefaultRegistry
// instead; a dedicated Registry is useful for isolating caches created by
// tests or by independent subsystems.
func NewRegistry() *Registry {
	return &Registry{caches: make(map[string]*Cache)}
}

// DefaultRegistry is where caches register themselves unless a
// CacheOptions.Registry override or SkipRegistry is given.
var DefaultRegistry = NewRegistry()

func (r *Registry) register(c *Cache) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.caches[c.name]; exists {
		return newInvalidArgument("a cache named " + c.name + " is already registered")
	}
	r.caches[c.name] = c
	return nil
}

func (r *Registry) deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.caches, name)
}

// Lookup finds a live, registered cache by name.
func (r *Registry) Lookup(name string) (*Cache, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caches[name]
	if !ok {
		return nil, ErrUnknownCache
	}
	return c, nil
}

// Snapshot returns CacheInfo for every currently registered cache, in no
// particular order — the slabinfo-style introspection view.
func (r *Registry) Snapshot() []CacheInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CacheInfo, 0, len(r.caches))
	for _, c := range r.caches {
		out = append(out, c.Info())
	}
	return out
}
