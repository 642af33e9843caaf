package hazard

import (
	"runtime"
	"sync/atomic"
	"unsafe"
)

// spinBound is the number of consecutive blocked loads after which a
// checked build declares the hazard stuck and panics. A hazard is blocked
// only for the handful of instructions between Block and the following Set,
// so a hundred million rounds means the writer died mid-transition, not
// legitimate contention.
const spinBound = 100_000_000

// yieldMask controls how often the spin loop yields the scheduler: every
// (yieldMask+1)-th round. Pure spinning would livelock a GOMAXPROCS=1
// program whose writer goroutine never gets scheduled; an occasional
// Gosched keeps the loop hot while still letting the writer run.
const yieldMask = 127

// Hazard is the shared atomic slot of a hazard pair.
//
// It holds the same information as State but encoded so that it is
// atomically accessible in a single load or store, plus the additional
// Blocked state that Get refuses to return (see the package comment).
//
// Go's sync/atomic operations are sequentially consistent, which subsumes
// the release/acquire pairing this type needs: a goroutine that observes a
// non-blocked value through Get also observes every write that
// happened-before the corresponding Set. Downstream code may therefore
// dereference a protected address it obtained from a hazard without further
// synchronization.
//
// Thread safety: any goroutine may call any method concurrently with any
// other. There are no locks; safety comes from the state machine alone.
type Hazard struct {
	// ptr holds the encoded state. Pointer-typed (rather than uintptr) so
	// that a protected address keeps its referent reachable to Go's GC.
	ptr atomic.Pointer[byte]
}

// NewBlocked returns a fresh heap-allocated hazard in blocked state.
//
// Blocked is the only valid initial state: it forces the sweep to wait
// until the owning writer publishes a real state, instead of observing an
// arbitrary default.
func NewBlocked() *Hazard {
	h := &Hazard{}
	h.ptr.Store(&blockedSentinel)
	return h
}

// Block unconditionally puts the hazard into blocked state.
//
// Writers call this before changing which address they protect; see the
// package comment for why. The only way out of blocked state is Set.
//
//go:nosplit
func (h *Hazard) Block() {
	h.ptr.Store(&blockedSentinel)
}

// IsBlocked reports whether the hazard is currently blocked.
//
// This is a non-blocking snapshot, in contrast to Get. Readers use it to
// skip work while a transition is in flight rather than committing to the
// spin path.
//
//go:nosplit
func (h *Hazard) IsBlocked() bool {
	return h.ptr.Load() == &blockedSentinel
}

// Set unconditionally stores a new state.
//
// The current state does not matter; in particular this is the one
// operation that transitions a hazard out of blocked state. To re-block,
// use Block.
//
//go:nosplit
func (h *Hazard) Set(s State) {
	h.ptr.Store(s.encode())
}

// Get returns the current state of the hazard.
//
// If the hazard is blocked, Get spins until it no longer is. In a checked
// build (-tags debug) the spin is bounded by spinBound and panics past it;
// in a release build the debugChecks branch is a compile-time constant
// false and the bound check costs nothing.
func (h *Hazard) Get() State {
	for spins := 0; ; spins++ {
		p := h.ptr.Load()

		if p == &blockedSentinel {
			// Blocked by the paired writer; wait for it to publish the
			// next state.
			if debugChecks && spins >= spinBound {
				panic("hazard: blocked for 100 million rounds; the writer is probably stuck, not contended")
			}
			if spins&yieldMask == yieldMask {
				runtime.Gosched()
			}
			continue
		}

		switch p {
		case &freeSentinel:
			return State{Kind: Free}
		case &deadSentinel:
			return State{Kind: Dead}
		default:
			return State{Kind: Protected, Addr: unsafe.Pointer(p)}
		}
	}
}
