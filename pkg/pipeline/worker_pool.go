package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// WorkerPool runs record-level work with bounded parallelism. A semaphore
// limits outstanding work; results land at the slot of the item that produced
// them, so callers see input order regardless of completion order.
type WorkerPool struct {
	maxConcurrent int
	logger        *zap.Logger
}

// NewWorkerPool creates a pool with the given concurrency bound.
func NewWorkerPool(maxConcurrent int, logger *zap.Logger) *WorkerPool {
	if maxConcurrent < 1 {
		maxConcurrent = 4
	}
	return &WorkerPool{
		maxConcurrent: maxConcurrent,
		logger:        logger.Named("worker-pool"),
	}
}

// Process executes all items and returns their results in input order.
// Cancellation stops unstarted items; their slots carry ctx.Err().
func Process[T, R any](ctx context.Context, pool *WorkerPool, items []T, work func(ctx context.Context, item T) (R, error)) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))
	sem := make(chan struct{}, pool.maxConcurrent)

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}

			results[i], errs[i] = work(ctx, item)
		}(i, item)
	}
	wg.Wait()

	return results, errs
}
