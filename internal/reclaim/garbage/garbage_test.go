package garbage

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/kolkov/reclaim/internal/reclaim/hazard"
	"github.com/kolkov/reclaim/internal/reclaim/local"
)

// TestProtectedSet verifies that a scan reports exactly the addresses
// published by live writers.
func TestProtectedSet(t *testing.T) {
	c := New()
	var x, y int

	w1, r1 := hazard.Create()
	w2, r2 := hazard.Create()
	w3, r3 := hazard.Create()
	c.Register(r1)
	c.Register(r2)
	c.Register(r3)

	w1.Set(hazard.Protect(unsafe.Pointer(&x)))
	w2.Set(hazard.Protect(unsafe.Pointer(&y)))
	w3.Set(hazard.State{Kind: hazard.Free})

	set := c.Protected()
	if len(set) != 2 {
		t.Fatalf("Protected() has %d addresses, want 2", len(set))
	}
	if _, ok := set[unsafe.Pointer(&x)]; !ok {
		t.Errorf("Protected() is missing %p (x)", &x)
	}
	if _, ok := set[unsafe.Pointer(&y)]; !ok {
		t.Errorf("Protected() is missing %p (y)", &y)
	}

	for _, w := range []*hazard.Writer{w1, w2, w3} {
		w.Kill()
	}
	if c.Protected(); c.Live() != 0 {
		t.Errorf("Live() = %d after killing all writers and rescanning, want 0", c.Live())
	}
}

// TestScanDestroysDeadReaders verifies the cleanup duty: a reader whose
// writer was killed is destroyed and dropped by the next scan.
func TestScanDestroysDeadReaders(t *testing.T) {
	c := New()

	w1, r1 := hazard.Create()
	w2, r2 := hazard.Create()
	c.Register(r1)
	c.Register(r2)

	w1.Set(hazard.State{Kind: hazard.Free})
	w2.Set(hazard.State{Kind: hazard.Free})
	w1.Kill()

	c.Protected()

	if got := c.Live(); got != 1 {
		t.Fatalf("Live() = %d after scanning one dead reader, want 1", got)
	}
	registered, destroyed := c.Stats()
	if registered != 2 || destroyed != 1 {
		t.Errorf("Stats() = registered %d, destroyed %d; want 2, 1", registered, destroyed)
	}

	w2.Kill()
	c.Protected()
	if got := c.Live(); got != 0 {
		t.Errorf("Live() = %d at teardown, want 0", got)
	}
}

// TestFreeReadersKept verifies that an idle (Free) hazard stays in the
// scan set: its writer may protect again at any moment.
func TestFreeReadersKept(t *testing.T) {
	c := New()
	var x int

	w, r := hazard.Create()
	c.Register(r)
	w.Set(hazard.State{Kind: hazard.Free})

	if set := c.Protected(); len(set) != 0 {
		t.Errorf("Protected() has %d addresses for an idle hazard, want 0", len(set))
	}
	if got := c.Live(); got != 1 {
		t.Fatalf("Live() = %d after scanning an idle hazard, want 1", got)
	}

	// The same reader must pick up a later protection.
	w.Set(hazard.Protect(unsafe.Pointer(&x)))
	if set := c.Protected(); len(set) != 1 {
		t.Errorf("Protected() has %d addresses after re-protecting, want 1", len(set))
	}

	w.Kill()
	c.Protected()
}

// TestCacheCollectorChurn runs the full lifecycle across several worker
// goroutines: acquire from a cache, protect, release, with concurrent
// scans; then drain everything and verify the collector ends empty.
func TestCacheCollectorChurn(t *testing.T) {
	collector := New()

	const workers = 4
	const iterations = 500

	var wg sync.WaitGroup
	caches := make([]*local.Cache, workers)
	for i := range caches {
		caches[i] = local.New(8, collector)
	}

	stop := make(chan struct{})
	var sweeps sync.WaitGroup
	sweeps.Add(1)
	go func() {
		defer sweeps.Done()
		for {
			select {
			case <-stop:
				return
			default:
				collector.Protected()
			}
		}
	}()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(cache *local.Cache) {
			defer wg.Done()
			var obj int
			for n := 0; n < iterations; n++ {
				w := cache.Acquire()
				w.Block()
				w.Set(hazard.Protect(unsafe.Pointer(&obj)))
				w.Set(hazard.State{Kind: hazard.Free})
				w.Release(cache, false)
			}
		}(caches[i])
	}

	wg.Wait()
	close(stop)
	sweeps.Wait()

	for _, cache := range caches {
		cache.Drain()
	}
	collector.Protected()

	if got := collector.Live(); got != 0 {
		t.Fatalf("Live() = %d after draining all caches, want 0", got)
	}
	registered, destroyed := collector.Stats()
	if registered != destroyed {
		t.Errorf("Stats() registered %d != destroyed %d after full drain", registered, destroyed)
	}
}

// BenchmarkProtectedScan measures a scan over a fixed population of
// protecting hazards.
func BenchmarkProtectedScan(b *testing.B) {
	c := New()
	objs := make([]int, 128)
	writers := make([]*hazard.Writer, len(objs))

	for i := range objs {
		w, r := hazard.Create()
		c.Register(r)
		w.Set(hazard.Protect(unsafe.Pointer(&objs[i])))
		writers[i] = w
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Protected()
	}
	b.StopTimer()

	for _, w := range writers {
		w.Kill()
	}
	c.Protected()
}
