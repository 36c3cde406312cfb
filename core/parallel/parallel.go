// Package parallel provides the chunked loops minwls uses to spread
// row-wise work and independent fits across CPUs.
package parallel

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelizeWithThreshold calls fn over [0, n) in contiguous chunks. Below
// threshold the whole range runs on the calling goroutine. fn must only
// touch indices in its own chunk. A panic in any chunk is re-raised on the
// caller after all chunks finish.
func ParallelizeWithThreshold(n, threshold int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if n < threshold || workers <= 1 {
		fn(0, n)
		return
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	panics := make([]interface{}, workers)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, n)
		if start >= end {
			break
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					panics[w] = r
				}
			}()
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
	for _, p := range panics {
		if p != nil {
			panic(p)
		}
	}
}

// ForEach calls fn for every index in [0, n) with at most limit calls in
// flight (GOMAXPROCS when limit <= 0). The first error cancels ctx for the
// remaining calls and is returned. Panics are returned as errors.
func ForEach(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("parallel: task %d panicked: %v", i, r)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
