// Package parallel splits row-independent loops across CPU cores.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultThreshold is the row count at or below which loops stay sequential.
const DefaultThreshold = 1000

// Parallelize divides items into one contiguous [start, end) range per worker
// and runs fn on each range concurrently. fn must only touch rows in its range.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn(0, items) sequentially when items <= threshold,
// otherwise behaves like Parallelize.
func ParallelizeWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}

// ForEachRow calls fn(i) for every i in [0, items), in parallel above threshold.
func ForEachRow(items, threshold int, fn func(i int)) {
	ParallelizeWithThreshold(items, threshold, func(start, end int) {
		for i := start; i < end; i++ {
			fn(i)
		}
	})
}
