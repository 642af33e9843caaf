// Package garbage implements the sweep side of the hazard subsystem: the
// registry of hazard readers the reclamation pass consults before freeing
// anything.
//
// The collector here is deliberately not a garbage collector. It answers
// exactly one question — which addresses are currently protected — and
// performs exactly one cleanup duty: destroying readers whose writers have
// been killed. Deciding what to free with that information belongs to the
// caller.
package garbage

import (
	"sync"
	"unsafe"

	"github.com/kolkov/reclaim/internal/reclaim/hazard"
)

// Collector holds one reader per live hazard in the system. Caches hand it
// the reader half of every pair they create (it implements local.Registry).
type Collector struct {
	mu      sync.Mutex
	readers []*hazard.Reader

	registered uint64
	destroyed  uint64
}

// New returns an empty collector.
func New() *Collector {
	return &Collector{}
}

// Register adds a reader to the scan set. Safe for concurrent use with
// Protected and other Register calls.
func (c *Collector) Register(r *hazard.Reader) {
	c.mu.Lock()
	c.readers = append(c.readers, r)
	c.registered++
	c.mu.Unlock()
}

// Protected scans every registered reader and returns the set of addresses
// currently protected by some hazard. The reclamation pass must not free
// any address in the set.
//
// The scan doubles as reader cleanup: a reader observing Dead means its
// writer was killed and will never publish again, so the reader is
// destroyed and dropped from the scan set on the spot.
//
// A hazard caught mid-transition (blocked) is waited out, exactly as the
// read algorithm prescribes: returning early could miss a protection that
// is about to be republished.
func (c *Collector) Protected() map[unsafe.Pointer]struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	set := make(map[unsafe.Pointer]struct{})
	kept := c.readers[:0]

	for _, r := range c.readers {
		switch s := r.Get(); s.Kind {
		case hazard.Dead:
			r.Destroy()
			c.destroyed++
		case hazard.Protected:
			set[s.Addr] = struct{}{}
			kept = append(kept, r)
		default: // Free: idle but alive, keep scanning it.
			kept = append(kept, r)
		}
	}

	// Zero the tail so destroyed readers do not linger in the backing
	// array.
	for i := len(kept); i < len(c.readers); i++ {
		c.readers[i] = nil
	}
	c.readers = kept

	return set
}

// Live returns the number of readers currently in the scan set.
func (c *Collector) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.readers)
}

// Stats returns lifetime counters: readers registered and readers
// destroyed by the scan.
func (c *Collector) Stats() (registered, destroyed uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registered, c.destroyed
}
