package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fanOut runs build for each index 0..n-1 with at most limit builds in
// flight and returns the results in index order, whatever order they finish
// in. The first error cancels the derived context so remaining builds return
// early; results collected so far are still returned.
func fanOut[T any](ctx context.Context, n, limit int, build func(ctx context.Context, i int) (T, error)) ([]T, error) {
	results := make([]T, n)
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := 0; i < n; i++ {
		g.Go(func() error {
			r, err := build(gctx, i)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	err := g.Wait()
	return results, err
}
