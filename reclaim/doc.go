// Package reclaim provides the public API for the Pure-Go hazard-pointer
// memory reclamation primitives.
//
// Hazard pointers let a thread mark an object as "in use" so that a
// concurrent reclamation sweep will not free it, with the mark released
// cheaply and reused across many objects over the thread's lifetime.
//
// # Quick Start
//
//	package main
//
//	import (
//		"unsafe"
//
//		"github.com/kolkov/reclaim/reclaim"
//	)
//
//	func main() {
//		collector := reclaim.NewCollector()
//		cache := reclaim.NewCache(0, collector)
//
//		obj := new(int)
//
//		w := cache.Acquire()
//		w.Set(reclaim.Protect(unsafe.Pointer(obj)))
//		// ... use obj; the sweep will not free it ...
//		w.Set(reclaim.State{Kind: reclaim.Free})
//		w.Release(cache, false)
//
//		protected := collector.Protected()
//		_ = protected // addresses in this set must not be freed
//	}
//
// # Delegation protocol
//
// Every hazard is shared by exactly one [Writer] and one [Reader]:
//
//   - The Writer belongs to the protecting thread. It publishes
//     Protect(addr) while an object is in use, Free when none is, and
//     blocks the hazard around transitions so the sweep never observes a
//     stale value.
//   - The Reader belongs to the sweep ([Collector]). It polls the hazard
//     to build the protected-address set, and it alone may deallocate the
//     hazard, via Destroy, once the writer has been retired with Kill.
//
// Readers must be destroyed explicitly. One that becomes garbage without
// Destroy is treated as a fatal bug in every build configuration: a silent
// leak would mask the logic error, and a silent double-free would be far
// worse.
//
// # Checked builds
//
// Building with -tags debug enables additional misuse checks: destroying
// a reader whose hazard is not Dead panics, and a Get that spins on a
// blocked hazard for a hundred million rounds panics instead of hanging.
// Release builds compile those checks away. See [GetInfo].
package reclaim
