package fdm

import (
	"runtime"
	"sync"
)

// forkJoin splits the half-open index range [lo, hi) into one chunk per
// worker and blocks until every chunk has been processed. Kernels are
// data-parallel over the spatial index, so each call is a full barrier.
func forkJoin(workers, lo, hi int, fn func(lo, hi int)) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	n := hi - lo
	if n <= 0 {
		return
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		fn(lo, hi)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := lo + w*chunk
		if start >= hi {
			break
		}
		end := start + chunk
		if end > hi {
			end = hi
		}
		wg.Add(1)
		go func(a, b int) {
			defer wg.Done()
			fn(a, b)
		}(start, end)
	}
	wg.Wait()
}
