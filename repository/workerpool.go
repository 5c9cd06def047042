package repository

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// importConcurrency and batchConcurrency bound how many files Import and
// SaveBatch/AnalyzeBatch touch at once, the same errgroup.SetLimit shape
// used for bounded fan-out elsewhere in the example pack.
const (
	importConcurrency = 8
	batchConcurrency  = 4
)

// runBounded runs fn(item) for every item with at most limit concurrent
// calls, checking ctx between dispatches so a cancellation stops queuing
// new work at the next boundary without aborting work already in flight
// (spec.md §5: batch operations "check it between files ... never
// mid-file-write"). It never stops early on a single item's error —
// callers collect per-item outcomes through fn itself.
func runBounded[T any](ctx context.Context, limit int, items []T, fn func(context.Context, T) error) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for _, item := range items {
		item := item

		if ctx.Err() != nil {
			break
		}

		eg.Go(func() error {
			return fn(egCtx, item)
		})
	}

	return eg.Wait()
}
