// Package chunkpool runs a bounded-concurrency worker pool over a set of
// files. Each file is independent, so chunking and embedding it is safe to
// parallelize; the pool caps concurrency at machine parallelism by default
// (spec §5).
package chunkpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Run invokes fn once per item in items, bounded to limit concurrent
// goroutines (limit ≤ 0 defaults to runtime.GOMAXPROCS(0)). It returns the
// first error any invocation returns; the rest of the pool still drains
// (errgroup cancels the group's context but in-flight fn calls that don't
// observe ctx run to completion).
func Run[T any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) error) error {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, item := range items {
		item := item
		g.Go(func() error {
			return fn(gctx, item)
		})
	}

	return g.Wait()
}
