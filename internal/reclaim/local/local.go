// Package local implements the writer cache that recycles hazard writers
// between protection requests.
//
// Creating a hazard pair allocates and registers global state, which is too
// expensive to do on every pointer read. The cache amortizes it: a released
// writer is parked here and handed back out to the next protection request,
// so one hazard serves many objects over its owner's lifetime.
//
// A Cache is intended to be owned by one worker goroutine the way the
// original design gives each OS thread its own cache; it is nevertheless
// cheaply locked so that shutdown paths touching another worker's cache
// stay safe.
package local

import (
	"sync"

	"github.com/kolkov/reclaim/internal/reclaim/hazard"
)

// DefaultCapacity is the writer limit used by NewDefault. Beyond roughly
// the number of objects a worker touches concurrently, extra cached
// writers only cost the sweep time, so the bound is small.
const DefaultCapacity = 64

// Registry receives the reader half of every pair a cache creates. It is
// how new hazards become visible to the reclamation sweep; see package
// garbage for the implementation.
type Registry interface {
	Register(*hazard.Reader)
}

// Cache is a bounded free list of hazard writers. It implements
// hazard.Recycler.
type Cache struct {
	registry Registry

	mu       sync.Mutex
	free     []*hazard.Writer
	capacity int

	// Counters for the stress tool and tests; protected by mu.
	created uint64 // pairs created because the free list was empty
	reused  uint64 // writers handed back out of the free list
	killed  uint64 // writers retired because the free list was full
}

// New returns a cache holding at most capacity writers, registering new
// readers with registry. A non-positive capacity falls back to
// DefaultCapacity.
func New(capacity int, registry Registry) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{registry: registry, capacity: capacity}
}

// Acquire returns a writer ready for a protection request: a recycled one
// when available, otherwise a freshly created pair whose reader is handed
// to the registry.
//
// A recycled writer is in whatever state its previous owner released it;
// a fresh writer's hazard is blocked until the first Set. Either way the
// caller should publish a state before relying on the sweep's view.
func (c *Cache) Acquire() *hazard.Writer {
	c.mu.Lock()
	if n := len(c.free); n > 0 {
		w := c.free[n-1]
		c.free[n-1] = nil
		c.free = c.free[:n-1]
		c.reused++
		c.mu.Unlock()
		return w
	}
	c.created++
	c.mu.Unlock()

	// Create outside the lock; registration may take the sweep's lock.
	w, r := hazard.Create()
	c.registry.Register(r)
	return w
}

// Recycle takes ownership of a released writer, parking it for reuse. If
// the cache is at capacity the writer is killed instead, so the sweep can
// destroy its reader and reclaim the slot.
func (c *Cache) Recycle(w *hazard.Writer) {
	c.mu.Lock()
	if len(c.free) < c.capacity {
		c.free = append(c.free, w)
		c.mu.Unlock()
		return
	}
	c.killed++
	c.mu.Unlock()

	w.Kill()
}

// Drain kills every cached writer. Called when the owning worker shuts
// down; afterwards the sweep will observe the corresponding hazards Dead
// and destroy their readers.
func (c *Cache) Drain() {
	c.mu.Lock()
	writers := c.free
	c.free = nil
	c.killed += uint64(len(writers))
	c.mu.Unlock()

	for _, w := range writers {
		w.Kill()
	}
}

// Stats returns the lifetime counters: pairs created, writers reused, and
// writers killed on overflow or drain.
func (c *Cache) Stats() (created, reused, killed uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.created, c.reused, c.killed
}
