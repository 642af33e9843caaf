package reclaim

import (
	"unsafe"

	"github.com/kolkov/reclaim/internal/reclaim/garbage"
	"github.com/kolkov/reclaim/internal/reclaim/hazard"
	"github.com/kolkov/reclaim/internal/reclaim/local"
)

// The core types live in internal packages, same as in the rest of the
// module family; the facade re-exports them under stable names.
type (
	// State is an observable hazard state: Free, Dead, or Protected with
	// an address payload. See [Protect].
	State = hazard.State

	// Kind discriminates the observable states of a hazard.
	Kind = hazard.Kind

	// Hazard is the shared atomic slot of a hazard pair. Most callers
	// never touch it directly; use the [Writer] and [Reader] handles.
	Hazard = hazard.Hazard

	// Writer is the exclusive-mutation end of a hazard pair.
	Writer = hazard.Writer

	// Reader is the read/deallocate end of a hazard pair.
	Reader = hazard.Reader

	// Recycler is the boundary a released Writer is handed across for
	// reuse. [Cache] implements it.
	Recycler = hazard.Recycler

	// Cache is the bounded free list recycling writers between
	// protection requests. Intended to be owned per worker goroutine.
	Cache = local.Cache

	// Collector is the sweep-side registry of hazard readers.
	Collector = garbage.Collector
)

// Observable hazard states. Blocked is deliberately not among them:
// readers spin past it rather than observe it.
const (
	// Free means the hazard protects nothing.
	Free = hazard.Free

	// Dead means the hazard is retired and eligible for destruction.
	Dead = hazard.Dead

	// Protected means the hazard protects the address in State.Addr.
	Protected = hazard.Protected
)

// Protect returns the state protecting addr.
//
// addr is opaque to the subsystem and never dereferenced by it; nil is a
// legal value. See [hazard.Protect] for the (unchecked) sentinel
// precondition.
func Protect(addr unsafe.Pointer) State {
	return hazard.Protect(addr)
}

// Create allocates one hazard and returns the connected (Writer, Reader)
// pair sharing it, in blocked state.
//
// Most callers should go through [Cache.Acquire] instead, which reuses
// writers and registers new readers with the sweep automatically.
func Create() (*Writer, *Reader) {
	return hazard.Create()
}

// NewCollector returns an empty sweep-side collector.
func NewCollector() *Collector {
	return garbage.New()
}

// NewCache returns a writer cache of the given capacity whose new readers
// are registered with collector. A non-positive capacity selects the
// default.
func NewCache(capacity int, collector *Collector) *Cache {
	return local.New(capacity, collector)
}
