// Package main implements the hazstress soak tool.
//
// hazstress hammers the hazard-pointer subsystem from many goroutines at
// once: each worker repeatedly acquires a writer from its own cache,
// protects an object from a shared arena, does a little work, releases,
// and occasionally kills the writer outright. A sweeper goroutine runs
// protected-set scans the whole time.
//
// The tool exists to shake out lifecycle bugs (leaked readers, double
// destruction, stuck blocked hazards) under real scheduling pressure. Run
// it under the race detector and with -tags debug when chasing a report.
//
// Usage:
//
//	hazstress [flags]
//
//	-workers n    worker goroutines (default 8)
//	-iters n      protection cycles per worker (default 100000)
//	-cache n      writer-cache capacity per worker (default 64)
//	-kill-every n kill instead of recycle every n-th cycle (default 1000)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"github.com/kolkov/reclaim/reclaim"
)

func main() {
	var (
		workers   = flag.Int("workers", 8, "worker goroutines")
		iters     = flag.Int("iters", 100_000, "protection cycles per worker")
		cacheCap  = flag.Int("cache", 64, "writer-cache capacity per worker")
		killEvery = flag.Int("kill-every", 1000, "kill instead of recycle every n-th cycle")
	)
	flag.Parse()

	if *workers < 1 || *iters < 1 || *killEvery < 1 {
		fmt.Fprintln(os.Stderr, "hazstress: -workers, -iters and -kill-every must be positive")
		os.Exit(2)
	}

	info := reclaim.GetInfo()
	fmt.Fprintf(os.Stderr, "hazstress %s (%s, checked=%v): %d workers x %d cycles\n",
		info.Version, info.Technique, info.Checked, *workers, *iters)

	collector := reclaim.NewCollector()
	caches := make([]*reclaim.Cache, *workers)
	for i := range caches {
		caches[i] = reclaim.NewCache(*cacheCap, collector)
	}

	// Shared arena of addresses the workers pretend to use. The values
	// are never touched; only the addresses matter.
	arena := make([]uint64, 1024)

	start := time.Now()
	ctx, cancel := context.WithCancel(context.Background())

	// Sweeper: scan continuously until the workers finish.
	var scans int
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		for ctx.Err() == nil {
			collector.Protected()
			scans++
		}
	}()

	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < *workers; i++ {
		cache := caches[i]
		worker := i
		g.Go(func() error {
			for n := 0; n < *iters; n++ {
				w := cache.Acquire()

				// Block before changing the protected address so the
				// sweeper never observes a stale value mid-transition.
				w.Block()
				addr := unsafe.Pointer(&arena[(worker*31+n)%len(arena)])
				w.Set(reclaim.Protect(addr))

				// Simulated use of the protected object.
				w.Set(reclaim.State{Kind: reclaim.Free})

				if n%(*killEvery) == *killEvery-1 {
					w.Kill()
				} else {
					w.Release(cache, false)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "hazstress: %v\n", err)
		os.Exit(1)
	}
	cancel()
	<-sweepDone

	// Shutdown: drain every cache, then scan until all readers are gone.
	for _, cache := range caches {
		cache.Drain()
	}
	for collector.Live() > 0 {
		collector.Protected()
	}

	var created, reused, killed uint64
	for _, cache := range caches {
		c, r, k := cache.Stats()
		created += c
		reused += r
		killed += k
	}
	registered, destroyed := collector.Stats()

	fmt.Fprintf(os.Stderr, "\n==================\n")
	fmt.Fprintf(os.Stderr, "hazstress report\n")
	fmt.Fprintf(os.Stderr, "==================\n")
	fmt.Fprintf(os.Stderr, "elapsed:            %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "cycles:             %d\n", (*workers)*(*iters))
	fmt.Fprintf(os.Stderr, "pairs created:      %d\n", created)
	fmt.Fprintf(os.Stderr, "writers reused:     %d\n", reused)
	fmt.Fprintf(os.Stderr, "writers killed:     %d\n", killed)
	fmt.Fprintf(os.Stderr, "sweep scans:        %d\n", scans)
	fmt.Fprintf(os.Stderr, "readers registered: %d\n", registered)
	fmt.Fprintf(os.Stderr, "readers destroyed:  %d\n", destroyed)

	if registered != destroyed || collector.Live() != 0 {
		fmt.Fprintf(os.Stderr, "\nFAIL: %d readers leaked\n", registered-destroyed)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\nOK: no leaked readers\n")
}
