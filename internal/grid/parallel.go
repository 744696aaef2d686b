package grid

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is used when a caller asks for zero workers.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// ParallelFor runs fn over [0, n) split into contiguous chunks, one per
// worker, and returns once every chunk is done. fn must not touch another
// chunk's output.
func ParallelFor(n, workers int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
