package liftover

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/minigfa/internal/gtf"
)

// WorkItem is one gene to resolve against a path.
type WorkItem struct {
	Seq      int
	Gene     *gtf.Gene
	PathName string
}

// WorkResult holds the resolution for a single work item.
type WorkResult struct {
	Seq        int
	Gene       *gtf.Gene
	Resolution Resolution
	Err        error
}

// ParallelResolve resolves work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used. Workers stop taking items once
// ctx is cancelled.
func (r *Resolver) ParallelResolve(ctx context.Context, items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)
	g, ctx := errgroup.WithContext(ctx)

	for range workers {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case item, ok := <-items:
					if !ok {
						return nil
					}
					res, err := r.Resolve(item.Gene, item.PathName)
					results <- WorkResult{
						Seq:        item.Seq,
						Gene:       item.Gene,
						Resolution: res,
						Err:        err,
					}
				}
			}
		})
	}

	go func() {
		_ = g.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for res := range results {
		pending[res.Seq] = res

		for {
			next, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(next); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// ResolveAll resolves every gene against pathName and returns the results
// in input order. Per-gene failures are reported in WorkResult.Err; only
// cancellation fails the call.
func (r *Resolver) ResolveAll(ctx context.Context, genes []*gtf.Gene, pathName string, workers int) ([]WorkResult, error) {
	items := make(chan WorkItem, len(genes))
	for i, gene := range genes {
		items <- WorkItem{Seq: i, Gene: gene, PathName: pathName}
	}
	close(items)

	out := make([]WorkResult, 0, len(genes))
	err := OrderedCollect(r.ParallelResolve(ctx, items, workers), func(res WorkResult) error {
		if res.Err != nil {
			r.logger.Warn("failed to resolve gene",
				zap.String("gene", res.Gene.ID),
				zap.String("path", pathName),
				zap.Error(res.Err))
		}
		out = append(out, res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
