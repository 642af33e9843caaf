package hazard

import "runtime"

// Recycler is the boundary to the thread-local writer cache.
//
// The cache is external to this package: hazard knows exactly one thing
// about it, namely that it will take back a released Writer and later hand
// it out again to a new protection request (through the same path that
// calls Create when the cache is empty). Eviction policy and capacity are
// the cache's business; an evicted writer must be retired with Kill.
type Recycler interface {
	// Recycle takes ownership of a released writer for later reuse.
	Recycle(*Writer)
}

// Writer is the mutating end of a hazard pair.
//
// Exactly one live Writer exists per Hazard. It is owned by one goroutine
// at a time and is how that goroutine announces which address it currently
// protects. A writer must end its life through exactly one of Kill or
// Release; it can never simply be abandoned, because the paired Reader
// would then spin or report a stale protection forever.
type Writer struct {
	h *Hazard
}

// Set stores a new state in the underlying hazard.
//
//go:nosplit
func (w *Writer) Set(s State) { w.h.Set(s) }

// Block puts the underlying hazard into blocked state. Call before
// changing the protected address; see the package comment.
//
//go:nosplit
func (w *Writer) Block() { w.h.Block() }

// IsBlocked reports whether the underlying hazard is blocked.
//
//go:nosplit
func (w *Writer) IsBlocked() bool { return w.h.IsBlocked() }

// Get returns the current state of the underlying hazard, spinning past
// blocked exactly as Hazard.Get does.
func (w *Writer) Get() State { return w.h.Get() }

// Kill consumes the writer and retires its hazard.
//
// The hazard is set to Dead, which signals the sweep that the slot will
// never be reused and the paired Reader is eligible for destruction. A
// killed writer must not be used or released again; this is a caller
// obligation, not detected here.
//
// Killing forgoes reuse, so prefer Release unless the hazard really is
// permanently done (cache overflow, owner shutdown).
func (w *Writer) Kill() {
	w.h.Set(State{Kind: Dead})
}

// Release consumes the writer at the end of its owner's use.
//
// The unwinding flag tells Release whether the owner is tearing down
// because of an in-flight failure. Go has no ambient equivalent of "is
// this goroutine panicking", so the distinction is an explicit parameter:
// the caller passes true from a recover/teardown path and false from
// normal completion.
//
// On normal release the writer is handed to the cache unchanged, current
// state included, for reuse by a future protection request. When unwinding,
// recycling is skipped and the hazard is set to Dead instead: pushing into
// a cache mid-teardown could let a concurrent sweep observe the hazard
// blocked with no writer left to unblock it.
func (w *Writer) Release(cache Recycler, unwinding bool) {
	if unwinding {
		w.h.Set(State{Kind: Dead})
		return
	}
	cache.Recycle(w)
}

// Reader is the observing end of a hazard pair.
//
// Exactly one live Reader exists per Hazard. It is held by the global
// sweep, which polls Get on every registered reader to build the set of
// currently protected addresses before reclaiming anything.
//
// The Reader side is the deallocation authority: Destroy is the only
// operation that releases the shared Hazard's storage, and the only legal
// way for a Reader to die. A Reader that becomes garbage without Destroy
// trips an unconditionally fatal finalizer — silently leaking would mask a
// logic bug, and silently double-freeing is far worse.
type Reader struct {
	h         *Hazard
	destroyed bool
}

// Get returns the current state of the underlying hazard, spinning past
// blocked exactly as Hazard.Get does.
func (r *Reader) Get() State { return r.h.Get() }

// Destroy consumes the reader and releases the shared hazard.
//
// Precondition: the hazard must be Dead, i.e. the paired writer was killed
// and will never be used again. Only the caller can prove that; a checked
// build verifies the observable half (the Dead state) and panics on
// violation, a release build trusts the caller.
//
// Destroy severs the reader's reference so the hazard's storage can be
// reclaimed, and disarms the leak finalizer. The reader must not be used
// again afterwards.
func (r *Reader) Destroy() {
	if debugChecks {
		if r.destroyed {
			panic("hazard: reader destroyed twice")
		}
		if s := r.h.Get(); s.Kind != Dead {
			panic("hazard: freeing an active hazard")
		}
	}

	r.destroyed = true
	r.h = nil
	runtime.SetFinalizer(r, nil)
}

// onLeak is what the leak finalizer does. It is a variable only so the
// package tests can observe the fatal path without crashing the test
// binary; outside tests it always panics, in every build configuration.
var onLeak = func() {
	panic("hazard: reader became garbage without Destroy; hazard readers must be destroyed manually")
}

// Create allocates one hazard and returns the connected (Writer, Reader)
// pair sharing it.
//
// This is the single allocation point for the primitive. The hazard starts
// blocked and stays blocked until the writer's first Set, so a sweep that
// races with pair creation waits instead of misreading the slot.
//
// The returned reader carries a finalizer enforcing the explicit-destroy
// contract described on Reader.
func Create() (*Writer, *Reader) {
	h := NewBlocked()

	r := &Reader{h: h}
	runtime.SetFinalizer(r, func(r *Reader) {
		if !r.destroyed {
			onLeak()
		}
	})

	return &Writer{h: h}, r
}

// Checked reports whether this binary was built with the misuse checks
// enabled (-tags debug).
func Checked() bool { return debugChecks }
