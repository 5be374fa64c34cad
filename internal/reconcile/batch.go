package reconcile

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/planbiir/alignfix/internal/layout"
	"github.com/planbiir/alignfix/internal/logging"
)

// Batch reconciles independent alignments concurrently, at most
// parallelism at a time. Zero or less means one per CPU. Results are in
// input order. The first error cancels the remaining work.
func Batch(ctx context.Context, alignments []layout.Alignment, cfg Config, parallelism int) ([]*Result, error) {
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	if logging.RunID(ctx) == "" {
		ctx, _ = logging.WithRunID(ctx)
	}

	results := make([]*Result, len(alignments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := range alignments {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			res, err := Reconcile(gctx, alignments[i], cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
