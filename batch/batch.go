package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/gobeaver/filescraper/logger"
	"github.com/gobeaver/filescraper/merge"
)

// ScrapeFunc scrapes one file.
type ScrapeFunc func(ctx context.Context, path string) (*merge.FileResult, error)

// Item is the outcome for one file. Err is set when the request itself was
// invalid; scrape findings are in Result.
type Item struct {
	Path   string
	Result *merge.FileResult
	Err    error
}

// Runner scrapes files in parallel.
type Runner struct {
	scrape  ScrapeFunc
	workers int
	limiter *rate.Limiter
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers bounds the number of files scraped at once. Values below 1
// mean one worker.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n < 1 {
			n = 1
		}
		r.workers = n
	}
}

// WithRate limits how many files are started per second. Zero or less
// means unlimited.
func WithRate(perSecond int) RunnerOption {
	return func(r *Runner) {
		if perSecond <= 0 {
			r.limiter = nil
			return
		}
		r.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
}

// NewRunner creates a runner using scrape for each file.
func NewRunner(scrape ScrapeFunc, opts ...RunnerOption) *Runner {
	r := &Runner{scrape: scrape, workers: 4}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run scrapes every path and calls emit with each outcome. emit is never
// called concurrently. Results are emitted in completion order. Run stops
// early when ctx is cancelled or emit returns an error.
func (r *Runner) Run(ctx context.Context, paths []string, emit func(Item) error) error {
	log := logger.ComponentLogger("batch")
	items := make(chan Item)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(items)

		workers, wctx := errgroup.WithContext(gctx)
		workers.SetLimit(r.workers)
		for _, path := range paths {
			if r.limiter != nil {
				if err := r.limiter.Wait(wctx); err != nil {
					break
				}
			}
			if wctx.Err() != nil {
				break
			}
			workers.Go(func() error {
				res, err := r.scrape(wctx, path)
				if err != nil {
					log.Warnw("scrape failed", logger.FieldFile, path, logger.FieldError, err)
				}
				select {
				case items <- Item{Path: path, Result: res, Err: err}:
					return nil
				case <-wctx.Done():
					return wctx.Err()
				}
			})
		}
		return workers.Wait()
	})

	g.Go(func() error {
		for item := range items {
			if err := emit(item); err != nil {
				// Drain so producers can finish.
				go func() {
					for range items {
					}
				}()
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// RunEntries is Run over walked entries.
func (r *Runner) RunEntries(ctx context.Context, entries []Entry, emit func(Item) error) error {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return r.Run(ctx, paths, emit)
}
