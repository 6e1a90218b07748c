package scraper

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunAll runs one runner per descriptor concurrently and returns the results
// in descriptor order. A fatal outcome in one scraper does not affect the
// others. limit bounds concurrency; zero or less means unbounded.
func RunAll(ctx context.Context, descriptors []*Descriptor, req Request, exec Executor, limit int) []*Result {
	results := make([]*Result, len(descriptors))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, d := range descriptors {
		runner := NewRunner(d, req, exec)
		g.Go(func() error {
			// A fresh runner cannot fail with ErrAlreadyRun.
			res, _ := runner.Run(ctx)
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}
