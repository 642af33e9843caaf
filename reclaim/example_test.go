package reclaim_test

import (
	"fmt"
	"unsafe"

	"github.com/kolkov/reclaim/reclaim"
)

// Example demonstrates the full hazard lifecycle: protect an object, let
// the sweep observe the protection, release, and retire.
func Example() {
	collector := reclaim.NewCollector()
	cache := reclaim.NewCache(0, collector)

	obj := new(int)

	// Protect the object while it is in use.
	w := cache.Acquire()
	w.Set(reclaim.Protect(unsafe.Pointer(obj)))

	protected := collector.Protected()
	_, ok := protected[unsafe.Pointer(obj)]
	fmt.Println("protected while in use:", ok)

	// Done with the object: free the hazard and recycle the writer.
	w.Set(reclaim.State{Kind: reclaim.Free})
	w.Release(cache, false)

	protected = collector.Protected()
	_, ok = protected[unsafe.Pointer(obj)]
	fmt.Println("protected after release:", ok)

	// Shutdown: drain the cache, let one last scan destroy the readers.
	cache.Drain()
	collector.Protected()
	fmt.Println("live readers after drain:", collector.Live())

	// Output:
	// protected while in use: true
	// protected after release: false
	// live readers after drain: 0
}

// Example_pair shows the raw pair protocol beneath the cache: create,
// observe across the pair, kill, destroy.
func Example_pair() {
	w, r := reclaim.Create()

	x := 2
	w.Set(reclaim.Protect(unsafe.Pointer(&x)))
	fmt.Println("reader sees protection:", r.Get().Kind == reclaim.Protected)

	w.Kill()
	fmt.Println("reader sees dead:", r.Get().Kind == reclaim.Dead)

	r.Destroy()

	// Output:
	// reader sees protection: true
	// reader sees dead: true
}
